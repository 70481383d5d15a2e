package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

// handleListDishMedia serves GET /{version}/dish-media.
func (s *Server) handleListDishMedia(w http.ResponseWriter, r *http.Request) {
	query, err := domain.ParseDiscoveryQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.discoverer.Discover(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if items == nil {
		items = []domain.DishMediaItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSignedURL serves POST /{version}/user-uploads/signed-url.
func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	var req domain.SignedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid_body",
			"message": "request body must be JSON",
		})
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.issuer.IssueSignedURL(r.Context(), UserID(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// writeError maps domain errors to HTTP responses. Provider failures are
// logged with the correlation id but surfaced generically; detail-level
// partial failures never reach this path.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "validation_failed",
			"field":   verr.Field,
			"message": verr.Message,
		})
		return
	}

	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		s.logger.Error("places provider failure",
			"request_id", RequestID(r.Context()),
			"provider_status", perr.Status,
			"error", perr.Message,
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "provider_error",
			"message": "upstream place search failed",
		})
		return
	}

	s.logger.Error("request failed",
		"request_id", RequestID(r.Context()),
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "internal_error",
		"message": "unexpected server error",
	})
}
