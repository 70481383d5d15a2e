package apiclient

import "fmt"

// ErrorCode classifies a failed dispatch so callers can branch without
// string-matching response bodies themselves.
type ErrorCode string

const (
	// CodeUnauthenticated means no access token was available; the request
	// was never sent.
	CodeUnauthenticated ErrorCode = "unauthenticated"
	// CodeMaintenanceMode means the backend rejected the call because it is
	// down for maintenance.
	CodeMaintenanceMode ErrorCode = "maintenance_mode"
	// CodeUnsupportedVersion means the backend no longer serves this app
	// version.
	CodeUnsupportedVersion ErrorCode = "unsupported_version"
	// CodeForbidden covers any other 403.
	CodeForbidden ErrorCode = "forbidden"
	// CodeHTTPError covers every remaining non-2xx status.
	CodeHTTPError ErrorCode = "http_error"
)

// ClassifiedError is the single error type Call returns for request
// failures. RequestID carries the server's correlation id when present.
type ClassifiedError struct {
	Code      ErrorCode
	Message   string
	Status    int
	RequestID string
}

func (e *ClassifiedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api call failed: %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("api call failed: %s: %s", e.Code, e.Message)
}
