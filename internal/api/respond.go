package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/auth"
	"github.com/brewops/brewery-server/internal/billing"
	"github.com/brewops/brewery-server/internal/oauth"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/internal/tenant"
)

// envelope is the uniform response shape
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// respondJSON writes a JSON response
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

// respondSuccess wraps data in the success envelope
func (s *RESTServer) respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	s.respondJSON(w, status, envelope{Success: true, Data: data})
}

// respondError writes an error response
func (s *RESTServer) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, envelope{Success: false, Message: message})
}

// respondDomainError maps domain errors to HTTP statuses. Every handler
// funnels non-validation failures through here so the taxonomy stays in
// one place. Unknown errors are logged and surface as an opaque 500.
func (s *RESTServer) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrNoTenant),
		errors.Is(err, oauth.ErrAuthFailed),
		errors.Is(err, auth.ErrTokenNotFound),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrTokenMismatch):
		s.respondError(w, http.StatusUnauthorized, "unauthorized")

	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "resource not found")

	case errors.Is(err, storage.ErrReferenced),
		errors.Is(err, storage.ErrDuplicateKey):
		s.respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, storage.ErrInvalidData),
		errors.Is(err, billing.ErrBadSignature),
		errors.Is(err, oauth.ErrUnknownProvider):
		s.respondError(w, http.StatusBadRequest, err.Error())

	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Unhandled error")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
