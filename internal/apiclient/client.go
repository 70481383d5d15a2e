// Package apiclient dispatches authenticated calls to the discovery backend
// and classifies the gate responses the backend uses to steer old or
// unauthenticated clients.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Version selects the API surface a call targets.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// Error body markers the backend gates emit. These must match the server's
// responses exactly.
const (
	maintenanceMarker        = "Service maintenance"
	unsupportedVersionMarker = "Unsupported version"
)

// Session supplies the current access token. An empty token means the user
// is signed out.
type Session interface {
	AccessToken() string
}

// Notifier surfaces gate responses to the user. ShowStoreNotice points at
// the platform's app store.
type Notifier interface {
	ShowNotice(message string)
	ShowStoreNotice(message, storeURL string)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	AppVersion   string
	Platform     string // "ios" or "android"
	AppStoreURL  string
	PlayStoreURL string
	Session      Session
	Notifier     Notifier
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// CallOptions shapes a single dispatch. Body and Multipart are mutually
// exclusive; Multipart wins if both are set.
type CallOptions struct {
	Method    string
	Query     url.Values
	Body      any
	Multipart *MultipartForm
}

// Client dispatches calls to the backend. It never retries; retry policy
// belongs to the caller.
type Client struct {
	baseURL      string
	appVersion   string
	platform     string
	appStoreURL  string
	playStoreURL string
	session      Session
	notifier     Notifier
	httpClient   *http.Client
	logger       *slog.Logger
}

// New creates a dispatch client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		appVersion:   opts.AppVersion,
		platform:     opts.Platform,
		appStoreURL:  opts.AppStoreURL,
		playStoreURL: opts.PlayStoreURL,
		session:      opts.Session,
		notifier:     opts.Notifier,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// Call dispatches one request to base/{version}/{endpoint} and decodes the
// JSON response into out (skipped when out is nil). Failures come back as
// *ClassifiedError.
func (c *Client) Call(ctx context.Context, endpoint string, version Version, opts CallOptions, out any) error {
	token := c.session.AccessToken()
	if token == "" {
		return &ClassifiedError{
			Code:    CodeUnauthenticated,
			Message: "no access token; sign in first",
		}
	}

	target := fmt.Sprintf("%s/%s/%s", c.baseURL, version, strings.TrimLeft(endpoint, "/"))
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := ""
	payloadForLog := ""
	switch {
	case opts.Multipart != nil:
		body = bytes.NewReader(opts.Multipart.Body)
		contentType = opts.Multipart.ContentType
		payloadForLog = "[multipart/form-data]"
	case opts.Body != nil:
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
		payloadForLog = string(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-app-version", c.appVersion)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	requestID := resp.Header.Get("x-request-id")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(resp, endpoint, requestID)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", endpoint, err)
		}
	}

	c.logger.Info("api call succeeded",
		"endpoint", endpoint,
		"version", string(version),
		"method", method,
		"status", resp.StatusCode,
		"request_id", requestID,
		"payload", payloadForLog,
	)
	return nil
}

// classify maps a non-2xx response to a ClassifiedError and fires the
// matching user notice.
func (c *Client) classify(resp *http.Response, endpoint, requestID string) error {
	message := readErrorMessage(resp.Body)

	cerr := &ClassifiedError{
		Code:      CodeHTTPError,
		Message:   message,
		Status:    resp.StatusCode,
		RequestID: requestID,
	}
	if message == "" {
		cerr.Message = fmt.Sprintf("%s returned %s", endpoint, resp.Status)
	}

	if resp.StatusCode == http.StatusForbidden {
		switch {
		case strings.Contains(message, maintenanceMarker):
			cerr.Code = CodeMaintenanceMode
			if c.notifier != nil {
				c.notifier.ShowNotice(message)
			}
		case strings.Contains(message, unsupportedVersionMarker):
			cerr.Code = CodeUnsupportedVersion
			if c.notifier != nil {
				c.notifier.ShowStoreNotice(message, c.storeURL())
			}
		default:
			cerr.Code = CodeForbidden
		}
	}

	c.logger.Warn("api call failed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"code", string(cerr.Code),
		"request_id", requestID,
	)
	return cerr
}

func (c *Client) storeURL() string {
	if c.platform == "ios" {
		return c.appStoreURL
	}
	return c.playStoreURL
}

// readErrorMessage extracts a human message from an error body, tolerating
// both {"error": ...} and {"message": ...} shapes as well as non-JSON bodies.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Error != "" && body.Message != "" {
		return body.Error + ": " + body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
