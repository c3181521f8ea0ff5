// Package billing is the narrow interface to the external payment
// provider. Subscription money movement happens on the provider's side;
// this package creates/updates provider objects and verifies webhooks.
package billing

import (
	"context"
	"errors"
	"time"
)

// Provider errors
var (
	// ErrBadSignature is returned for webhook payloads whose signature
	// does not verify.
	ErrBadSignature = errors.New("invalid webhook signature")
	ErrProvider     = errors.New("payment provider error")
)

// SetupIntent is a provider handle for collecting a payment method
type SetupIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// ProviderSubscription mirrors the provider's subscription object
type ProviderSubscription struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customerId"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
}

// WebhookEvent is a verified webhook notification
type WebhookEvent struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	SubscriptionID string `json:"subscriptionId"`
	CustomerID     string `json:"customerId"`
	Status         string `json:"status"`
}

// Provider is the payment collaborator surface consumed by handlers
type Provider interface {
	CreateCustomer(ctx context.Context, email, tenantRef string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)
	CreateSubscription(ctx context.Context, customerID, priceCode string) (*ProviderSubscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID, priceCode string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// VerifyWebhook checks the signature header against the raw payload
	// and returns the decoded event.
	VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error)
}
