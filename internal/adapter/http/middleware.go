package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

// Error markers the mobile client's dispatch layer matches on. Changing
// these strings breaks released app versions.
const (
	maintenanceMarker        = "Service maintenance"
	unsupportedVersionMarker = "Unsupported version"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userInfoKey  contextKey = "user_info"
)

// userInfo is a mutable holder seeded by the instrument middleware so the
// auth middleware deeper in the chain can expose the user id to it.
type userInfo struct {
	id string
}

// RequestID returns the correlation id assigned to this request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// UserID returns the authenticated user, empty before the auth middleware ran.
func UserID(ctx context.Context) string {
	if info, ok := ctx.Value(userInfoKey).(*userInfo); ok {
		return info.id
	}
	return ""
}

// statusRecorder captures the response status for logging, metrics, and audit.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument assigns a correlation id, times the request, and emits the log,
// metric, and audit records when the handler returns.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("x-request-id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, userInfoKey, &userInfo{})
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		endpoint := routeName(r)
		version := mux.Vars(r)["version"]

		s.metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())

		s.logger.Info("api request",
			"endpoint", endpoint,
			"method", r.Method,
			"version", version,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", requestID,
		)

		if s.auditor != nil {
			event := domain.APICallEvent{
				EventName:  "api_call_" + endpoint,
				Endpoint:   endpoint,
				Method:     r.Method,
				Version:    version,
				RequestID:  requestID,
				UserID:     UserID(r.Context()),
				Status:     rec.status,
				RecordedAt: domain.Now(),
			}
			if err := s.auditor.Publish(r.Context(), event); err != nil {
				s.logger.Warn("audit publish failed", "request_id", requestID, "error", err)
			}
		}
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return r.URL.Path
}

// maintenanceGate rejects every API call while the service is in maintenance.
func (s *Server) maintenanceGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.maintenanceMode {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":   maintenanceMarker,
				"message": "The service is temporarily down for maintenance.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// appVersionGate rejects clients older than the configured minimum version.
func (s *Server) appVersionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.minAppVersion != "" {
			appVersion := r.Header.Get("x-app-version")
			if appVersion == "" || compareVersions(appVersion, s.minAppVersion) < 0 {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":   unsupportedVersionMarker,
					"message": fmt.Sprintf("App version %s or later is required.", s.minAppVersion),
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// compareVersions compares dotted numeric versions; missing segments count
// as zero, non-numeric segments as -1 (always outdated).
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			if v, err := strconv.Atoi(strings.TrimSpace(as[i])); err == nil {
				av = v
			} else {
				av = -1
			}
		}
		if i < len(bs) {
			if v, err := strconv.Atoi(strings.TrimSpace(bs[i])); err == nil {
				bv = v
			} else {
				bv = -1
			}
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// authenticate verifies the bearer token and stores the user id in the
// request context. Token issuance and refresh are external concerns.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if header == "" || raw == header || raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "Unauthorized",
				"message": "missing bearer token",
			})
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingKey, nil
		})
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "Unauthorized",
				"message": "invalid bearer token",
			})
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if info, ok := r.Context().Value(userInfoKey).(*userInfo); ok {
				info.id, _ = claims["sub"].(string)
			}
		}

		next.ServeHTTP(w, r)
	})
}
