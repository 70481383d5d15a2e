// Package http exposes the inbound API: versioned discovery and upload
// endpoints behind bearer auth and client gates, plus health, readiness,
// and metrics routes.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
	"github.com/couchcryptid/dish-discovery-service/internal/observability"
)

// Discoverer runs one discovery request.
type Discoverer interface {
	Discover(ctx context.Context, query domain.DiscoveryQuery) ([]domain.DishMediaItem, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SignedURLIssuer is the external signed-upload collaborator. This service
// only calls it; issuing and storage belong elsewhere.
type SignedURLIssuer interface {
	IssueSignedURL(ctx context.Context, userID string, req domain.SignedURLRequest) (domain.SignedURLResponse, error)
}

// AuditPublisher records completed API exchanges. A nil publisher disables
// auditing.
type AuditPublisher interface {
	Publish(ctx context.Context, event domain.APICallEvent) error
}

// Options wires the server's collaborators and gates.
type Options struct {
	Addr            string
	Discoverer      Discoverer
	Issuer          SignedURLIssuer
	Ready           ReadinessChecker
	Auditor         AuditPublisher
	Metrics         *observability.Metrics
	Logger          *slog.Logger
	SigningKey      []byte
	MaintenanceMode bool
	MinAppVersion   string
	AllowedOrigins  []string
}

// Server exposes the discovery API over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	discoverer Discoverer
	issuer     SignedURLIssuer
	auditor    AuditPublisher
	metrics    *observability.Metrics

	signingKey      []byte
	maintenanceMode bool
	minAppVersion   string
}

// NewServer creates the HTTP server with versioned API routes and
// health/readiness/metrics endpoints.
func NewServer(opts Options) *Server {
	s := &Server{
		logger:          opts.Logger,
		discoverer:      opts.Discoverer,
		issuer:          opts.Issuer,
		auditor:         opts.Auditor,
		metrics:         opts.Metrics,
		signingKey:      opts.SigningKey,
		maintenanceMode: opts.MaintenanceMode,
		minAppVersion:   opts.MinAppVersion,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady(opts.Ready)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Versioned API; the route pattern restricts version to v1/v2.
	api := r.PathPrefix("/{version:v[12]}").Subrouter()
	api.Use(s.instrument, s.maintenanceGate, s.appVersionGate, s.authenticate)
	api.HandleFunc("/dish-media", s.handleListDishMedia).Methods(http.MethodGet).Name("dish-media")
	api.HandleFunc("/user-uploads/signed-url", s.handleSignedURL).Methods(http.MethodPost).Name("signed-url")

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "x-app-version"},
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      c.Handler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
