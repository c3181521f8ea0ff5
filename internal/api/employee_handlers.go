package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/auth"
	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/internal/tenant"
)

// employeeRequest is the write payload for employees
type employeeRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"email,max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	Title     string `json:"title" validate:"max=100"`
}

// handleListEmployees lists active employees for the tenant
func (s *RESTServer) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	var employees []*models.Employee
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		employees, err = tx.ListEmployees(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, employees)
}

// handleCreateEmployee creates an employee under the tenant's brewery
func (s *RESTServer) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())
	claims, _ := auth.FromContext(r.Context())

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	employee := &models.Employee{
		TenantID:  tenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Title:     req.Title,
		CreatedBy: claims.UserID,
	}

	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		brewery, err := tx.GetBreweryByTenant(r.Context(), tenantID)
		if err != nil {
			return err
		}
		employee.BreweryID = brewery.ID
		return tx.CreateEmployee(r.Context(), employee)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "employee created",
		"employee_id": employee.ID,
	})
}

// handleGetEmployee returns a single employee
func (s *RESTServer) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	var employee *models.Employee
	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		employee, err = tx.GetEmployee(r.Context(), tenantID, id)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, employee)
}

// handleUpdateEmployee updates an employee's mutable fields
func (s *RESTServer) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var employee *models.Employee
	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		employee, err = tx.GetEmployee(r.Context(), tenantID, id)
		if err != nil {
			return err
		}

		employee.FirstName = req.FirstName
		employee.LastName = req.LastName
		employee.Email = req.Email
		employee.Phone = req.Phone
		employee.Title = req.Title

		return tx.UpdateEmployee(r.Context(), employee)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, employee)
}

// handleDeactivateEmployee soft-deletes an employee
func (s *RESTServer) handleDeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		return tx.DeactivateEmployee(r.Context(), tenantID, id)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
