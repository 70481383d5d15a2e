package domain

import "time"

// APICallEvent records one authenticated API exchange for the audit sink.
// It is the backend counterpart of the mobile app's frontend event log.
type APICallEvent struct {
	EventName  string    `json:"event_name"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	Version    string    `json:"version"`
	RequestID  string    `json:"request_id"`
	UserID     string    `json:"user_id,omitempty"`
	Status     int       `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}
