package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/auth"
	"github.com/brewops/brewery-server/internal/billing"
	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/internal/tenant"
)

// signatureHeader carries the webhook signature from the payment provider
const signatureHeader = "X-Payment-Signature"

// maxWebhookBody bounds webhook payload reads
const maxWebhookBody = 1 << 20

// subscriptionRequest is the write payload for subscriptions
type subscriptionRequest struct {
	PlanID string `json:"planId" validate:"required,uuid"`
}

// handleGetSubscription returns the tenant's current subscription
func (s *RESTServer) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	var sub *models.Subscription
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		sub, err = tx.GetSubscriptionByTenant(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, sub)
}

// handleCreateSubscription subscribes the tenant to a plan. The provider
// customer and subscription are created first; the local record mirrors
// them.
func (s *RESTServer) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())
	claims, _ := auth.FromContext(r.Context())

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	plan, err := s.store.GetPlan(r.Context(), planID)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	var existing *models.Subscription
	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		existing, err = tx.GetSubscriptionByTenant(r.Context(), tenantID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	if existing != nil && existing.Status != models.SubscriptionStatusCanceled {
		s.respondError(w, http.StatusConflict, "tenant already has an active subscription")
		return
	}

	// Reuse the provider customer across resubscriptions
	customerID := ""
	if existing != nil {
		customerID = existing.ProviderCustomerID
	}
	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(r.Context(), claims.Email, tenantID.String())
		if err != nil {
			s.respondDomainError(w, r, err)
			return
		}
	}

	provSub, err := s.payments.CreateSubscription(r.Context(), customerID, plan.ProviderCode)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	sub := &models.Subscription{
		TenantID:               tenantID,
		PlanID:                 plan.ID,
		ProviderCustomerID:     customerID,
		ProviderSubscriptionID: provSub.ID,
		Status:                 provSub.Status,
	}
	if !provSub.CurrentPeriodEnd.IsZero() {
		end := provSub.CurrentPeriodEnd
		sub.CurrentPeriodEnd = &end
	}

	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		return tx.CreateSubscription(r.Context(), sub)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusCreated, sub)
}

// handleUpdateSubscription moves the tenant's subscription to another plan
func (s *RESTServer) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	plan, err := s.store.GetPlan(r.Context(), planID)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	var sub *models.Subscription
	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		sub, err = tx.GetSubscriptionByTenant(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	if sub.Status == models.SubscriptionStatusCanceled {
		s.respondError(w, http.StatusConflict, "subscription is canceled")
		return
	}

	provSub, err := s.payments.UpdateSubscription(r.Context(), sub.ProviderSubscriptionID, plan.ProviderCode)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	sub.PlanID = plan.ID
	sub.Status = provSub.Status
	if !provSub.CurrentPeriodEnd.IsZero() {
		end := provSub.CurrentPeriodEnd
		sub.CurrentPeriodEnd = &end
	}

	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		return tx.UpdateSubscription(r.Context(), sub)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, sub)
}

// handleCancelSubscription cancels the tenant's subscription at the
// provider and marks the local record
func (s *RESTServer) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())

	var sub *models.Subscription
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		sub, err = tx.GetSubscriptionByTenant(r.Context(), tenantID)
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	if sub.Status == models.SubscriptionStatusCanceled {
		s.respondSuccess(w, http.StatusOK, sub)
		return
	}

	if err := s.payments.CancelSubscription(r.Context(), sub.ProviderSubscriptionID); err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusCanceled
	sub.CanceledAt = &now

	err = s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		return tx.UpdateSubscription(r.Context(), sub)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, sub)
}

// handleCreateSetupIntent returns a provider handle for collecting a
// payment method in the frontend
func (s *RESTServer) handleCreateSetupIntent(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.FromContext(r.Context())
	claims, _ := auth.FromContext(r.Context())

	var sub *models.Subscription
	err := s.store.WithTenant(r.Context(), tenantID, func(tx storage.Store) error {
		var err error
		sub, err = tx.GetSubscriptionByTenant(r.Context(), tenantID)
		if errors.Is(err, storage.ErrNotFound) {
			sub = nil
			return nil
		}
		return err
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	customerID := ""
	if sub != nil {
		customerID = sub.ProviderCustomerID
	}
	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(r.Context(), claims.Email, tenantID.String())
		if err != nil {
			s.respondDomainError(w, r, err)
			return
		}
	}

	intent, err := s.payments.CreateSetupIntent(r.Context(), customerID)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, intent)
}

// handlePaymentWebhook ingests provider notifications. The request is
// authenticated by its signature, not a JWT; bad signatures are rejected
// before any lookup.
func (s *RESTServer) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	event, err := s.payments.VerifyWebhook(payload, r.Header.Get(signatureHeader))
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	switch event.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
		if err := s.applySubscriptionEvent(r, event); err != nil {
			// Unknown subscription ids are expected during replays; ack them
			if !errors.Is(err, storage.ErrNotFound) {
				s.respondDomainError(w, r, err)
				return
			}
			log.Warn().
				Str("event_id", event.ID).
				Str("subscription_id", event.SubscriptionID).
				Msg("Webhook for unknown subscription")
		}
	default:
		log.Debug().Str("type", event.Type).Msg("Ignoring webhook event type")
	}

	s.respondSuccess(w, http.StatusOK, map[string]string{"received": event.ID})
}

// applySubscriptionEvent mirrors the provider's subscription state locally
func (s *RESTServer) applySubscriptionEvent(r *http.Request, event *billing.WebhookEvent) error {
	sub, err := s.store.GetSubscriptionByProviderID(r.Context(), event.SubscriptionID)
	if err != nil {
		return err
	}

	if event.Type == "customer.subscription.deleted" || event.Status == models.SubscriptionStatusCanceled {
		now := time.Now()
		sub.Status = models.SubscriptionStatusCanceled
		sub.CanceledAt = &now
	} else if event.Status != "" {
		sub.Status = event.Status
	}

	return s.store.WithTenant(r.Context(), sub.TenantID, func(tx storage.Store) error {
		return tx.UpdateSubscription(r.Context(), sub)
	})
}
