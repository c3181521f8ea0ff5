package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/cache"
	"github.com/brewops/brewery-server/internal/models"
)

const planCatalogTTL = 5 * time.Minute

// handleListPlans lists subscription plans ordered by capacity, with the
// unlimited tier last. The catalog changes rarely, so it is cached.
func (s *RESTServer) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if cached, err := s.cache.Get(r.Context(), cache.PlanCatalogKey); err == nil {
		var plans []*models.Plan
		if err := json.Unmarshal(cached, &plans); err == nil {
			s.respondSuccess(w, http.StatusOK, plans)
			return
		}
	}

	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	if encoded, err := json.Marshal(plans); err == nil {
		if err := s.cache.Set(r.Context(), cache.PlanCatalogKey, encoded, planCatalogTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache plan catalog")
		}
	}

	s.respondSuccess(w, http.StatusOK, plans)
}

// handleGetPlanByName returns one plan by its case-insensitive name
func (s *RESTServer) handleGetPlanByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	plan, err := s.store.GetPlanByName(r.Context(), name)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, plan)
}

// handleGetPlan returns one plan by id
func (s *RESTServer) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, plan)
}
