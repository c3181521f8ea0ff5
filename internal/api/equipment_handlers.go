package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/auth"
	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/internal/tenant"
)

// equipmentTypeRequest is the write payload for equipment types
type equipmentTypeRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	BreweryID   string `json:"breweryId" validate:"uuid"`
}

// equipmentTypeResponse is the wire shape for equipment types. Field names
// are the API contract and stay stable regardless of column names.
type equipmentTypeResponse struct {
	EquipmentTypeID uuid.UUID  `json:"equipmentTypeId"`
	TenantID        uuid.UUID  `json:"tenantId"`
	BreweryID       *uuid.UUID `json:"breweryId,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	CreatedBy       uuid.UUID  `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toEquipmentTypeResponse(et *models.EquipmentType) *equipmentTypeResponse {
	return &equipmentTypeResponse{
		EquipmentTypeID: et.ID,
		TenantID:        et.TenantID,
		BreweryID:       et.BreweryID,
		Name:            et.Name,
		Description:     et.Description,
		CreatedBy:       et.CreatedBy,
		CreatedAt:       et.CreatedAt,
		UpdatedAt:       et.UpdatedAt,
	}
}

// handleListEquipmentTypes lists the tenant's equipment type catalog
func (s *RESTServer) handleListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	var types []*models.EquipmentType
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		types, err = tx.ListEquipmentTypes(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	out := make([]*equipmentTypeResponse, 0, len(types))
	for _, et := range types {
		out = append(out, toEquipmentTypeResponse(et))
	}

	s.respondSuccess(w, http.StatusOK, out)
}

// handleCreateEquipmentType creates an equipment type
func (s *RESTServer) handleCreateEquipmentType(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())
	claims, _ := auth.FromContext(r.Context())

	var req equipmentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	et := &models.EquipmentType{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   claims.UserID,
	}
	if req.BreweryID != "" {
		breweryID, err := uuid.Parse(req.BreweryID)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid brewery id")
			return
		}
		et.BreweryID = &breweryID
	}

	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		return tx.CreateEquipmentType(r.Context(), et)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusCreated, toEquipmentTypeResponse(et))
}

// handleGetEquipmentType returns a single equipment type
func (s *RESTServer) handleGetEquipmentType(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid equipment type id")
		return
	}

	var et *models.EquipmentType
	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		et, err = tx.GetEquipmentType(r.Context(), tenantID, id)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, toEquipmentTypeResponse(et))
}

// handleUpdateEquipmentType updates an equipment type
func (s *RESTServer) handleUpdateEquipmentType(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid equipment type id")
		return
	}

	var req equipmentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var et *models.EquipmentType
	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		et, err = tx.GetEquipmentType(r.Context(), tenantID, id)
		if err != nil {
			return err
		}

		et.Name = req.Name
		et.Description = req.Description

		return tx.UpdateEquipmentType(r.Context(), et)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, toEquipmentTypeResponse(et))
}

// handleDeleteEquipmentType deletes an equipment type. Types still
// referenced by equipment rows are refused with a conflict.
func (s *RESTServer) handleDeleteEquipmentType(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid equipment type id")
		return
	}

	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		return tx.DeleteEquipmentType(r.Context(), tenantID, id)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
