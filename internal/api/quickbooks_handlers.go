package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/cache"
	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/internal/tenant"
)

const (
	qbDefaultLimit = 50
	qbMaxLimit     = 200
	qbSummaryTTL   = time.Minute
)

// pagedResponse is the list shape for synced accounting data
type pagedResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// pageParams reads limit/offset query parameters with bounds
func pageParams(r *http.Request) (limit, offset int) {
	limit = qbDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > qbMaxLimit {
		limit = qbMaxLimit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// listQB runs a paged tenant-scoped list inside the tenant transaction
func (s *RESTServer) listQB(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, tx storage.Store, tenantID uuid.UUID, limit, offset int) (interface{}, int64, error)) {

	tenantID, _ := tenant.FromContext(r.Context())
	limit, offset := pageParams(r)

	var items interface{}
	var total int64
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		items, total, err = list(r.Context(), tx, tenantID, limit, offset)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, pagedResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// handleListQBAccounts lists synced chart-of-accounts entries
func (s *RESTServer) handleListQBAccounts(w http.ResponseWriter, r *http.Request) {
	s.listQB(w, r, func(ctx context.Context, tx storage.Store, tenantID uuid.UUID, limit, offset int) (interface{}, int64, error) {
		return asAny(tx.ListQBAccounts(ctx, tenantID, limit, offset))
	})
}

// handleListQBCustomers lists synced customers
func (s *RESTServer) handleListQBCustomers(w http.ResponseWriter, r *http.Request) {
	s.listQB(w, r, func(ctx context.Context, tx storage.Store, tenantID uuid.UUID, limit, offset int) (interface{}, int64, error) {
		return asAny(tx.ListQBCustomers(ctx, tenantID, limit, offset))
	})
}

// handleListQBItems lists synced product/service items
func (s *RESTServer) handleListQBItems(w http.ResponseWriter, r *http.Request) {
	s.listQB(w, r, func(ctx context.Context, tx storage.Store, tenantID uuid.UUID, limit, offset int) (interface{}, int64, error) {
		return asAny(tx.ListQBItems(ctx, tenantID, limit, offset))
	})
}

// handleListQBInvoices lists synced invoices
func (s *RESTServer) handleListQBInvoices(w http.ResponseWriter, r *http.Request) {
	s.listQB(w, r, func(ctx context.Context, tx storage.Store, tenantID uuid.UUID, limit, offset int) (interface{}, int64, error) {
		return asAny(tx.ListQBInvoices(ctx, tenantID, limit, offset))
	})
}

// handleListQBPayments lists synced payments
func (s *RESTServer) handleListQBPayments(w http.ResponseWriter, r *http.Request) {
	s.listQB(w, r, func(ctx context.Context, tx storage.Store, tenantID uuid.UUID, limit, offset int) (interface{}, int64, error) {
		return asAny(tx.ListQBPayments(ctx, tenantID, limit, offset))
	})
}

// asAny adapts a typed list result to the generic paged shape
func asAny[T any](items []*T, total int64, err error) (interface{}, int64, error) {
	return items, total, err
}

// handleQBSummary returns the tenant's accounting summary, cached briefly
// since it aggregates across five tables
func (s *RESTServer) handleQBSummary(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())
	key := cache.SummaryKey(tenantID.String())

	if cached, err := s.cache.Get(r.Context(), key); err == nil {
		var summary models.QBSummary
		if err := json.Unmarshal(cached, &summary); err == nil {
			s.respondSuccess(w, http.StatusOK, &summary)
			return
		}
	}

	var summary *models.QBSummary
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		summary, err = tx.GetQBSummary(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	if encoded, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(r.Context(), key, encoded, qbSummaryTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache accounting summary")
		}
	}

	s.respondSuccess(w, http.StatusOK, summary)
}

// handleGetQBConnection reports the tenant's accounting provider linkage.
// Encrypted tokens never leave the storage layer.
func (s *RESTServer) handleGetQBConnection(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	var conn *models.QBConnection
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		conn, err = tx.GetQBConnection(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, map[string]interface{}{
		"realmId":        conn.RealmID,
		"connected":      true,
		"tokenExpiresAt": conn.TokenExpiresAt,
		"updatedAt":      conn.UpdatedAt,
	})
}
