package billing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockProvider is an in-process payment provider for tests and local
// development. It records created objects and verifies webhooks with the
// same signature scheme as the real provider.
type MockProvider struct {
	mu            sync.Mutex
	seq           int
	webhookSecret string

	Customers     map[string]string
	Subscriptions map[string]*ProviderSubscription
	Canceled      []string
}

// NewMockProvider creates a mock provider
func NewMockProvider(webhookSecret string) *MockProvider {
	return &MockProvider{
		webhookSecret: webhookSecret,
		Customers:     make(map[string]string),
		Subscriptions: make(map[string]*ProviderSubscription),
	}
}

func (p *MockProvider) nextID(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s_mock_%d", prefix, p.seq)
}

// CreateCustomer records a customer and returns its id
func (p *MockProvider) CreateCustomer(ctx context.Context, email, tenantRef string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID("cus")
	p.Customers[id] = email
	return id, nil
}

// CreateSetupIntent returns a deterministic setup intent
func (p *MockProvider) CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID("seti")
	return &SetupIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

// CreateSubscription records an active subscription
func (p *MockProvider) CreateSubscription(ctx context.Context, customerID, priceCode string) (*ProviderSubscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &ProviderSubscription{
		ID:               p.nextID("sub"),
		CustomerID:       customerID,
		Status:           "active",
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour),
	}
	p.Subscriptions[sub.ID] = sub
	return sub, nil
}

// UpdateSubscription returns the stored subscription unchanged except for
// the period end
func (p *MockProvider) UpdateSubscription(ctx context.Context, subscriptionID, priceCode string) (*ProviderSubscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub, ok := p.Subscriptions[subscriptionID]
	if !ok {
		return nil, ErrProvider
	}
	sub.CurrentPeriodEnd = time.Now().Add(30 * 24 * time.Hour)
	return sub, nil
}

// CancelSubscription records the cancellation
func (p *MockProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub, ok := p.Subscriptions[subscriptionID]
	if !ok {
		return ErrProvider
	}
	sub.Status = "canceled"
	p.Canceled = append(p.Canceled, subscriptionID)
	return nil
}

// VerifyWebhook uses the shared signature scheme
func (p *MockProvider) VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error) {
	real := &HTTPProvider{webhookSecret: p.webhookSecret}
	return real.VerifyWebhook(payload, sigHeader)
}
