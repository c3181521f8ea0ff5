package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPProvider talks to the payment provider's REST API
type HTTPProvider struct {
	apiBase       string
	apiKey        string
	webhookSecret string
	client        *http.Client
}

// NewHTTPProvider creates a provider client
func NewHTTPProvider(apiBase, apiKey, webhookSecret string) *HTTPProvider {
	return &HTTPProvider{
		apiBase:       strings.TrimRight(apiBase, "/"),
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *HTTPProvider) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s returned %d", ErrProvider, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	return nil
}

// CreateCustomer creates a provider customer tagged with the tenant
func (p *HTTPProvider) CreateCustomer(ctx context.Context, email, tenantRef string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("metadata[tenant_id]", tenantRef)

	var customer struct {
		ID string `json:"id"`
	}
	if err := p.post(ctx, "/v1/customers", form, &customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// CreateSetupIntent starts payment-method collection for a customer
func (p *HTTPProvider) CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error) {
	form := url.Values{}
	form.Set("customer", customerID)

	var intent struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := p.post(ctx, "/v1/setup_intents", form, &intent); err != nil {
		return nil, err
	}
	return &SetupIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

type providerSubscriptionResponse struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

func (r *providerSubscriptionResponse) toSubscription() *ProviderSubscription {
	return &ProviderSubscription{
		ID:               r.ID,
		CustomerID:       r.Customer,
		Status:           r.Status,
		CurrentPeriodEnd: time.Unix(r.CurrentPeriodEnd, 0),
	}
}

// CreateSubscription subscribes a customer to a price
func (p *HTTPProvider) CreateSubscription(ctx context.Context, customerID, priceCode string) (*ProviderSubscription, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("items[0][price]", priceCode)

	var sub providerSubscriptionResponse
	if err := p.post(ctx, "/v1/subscriptions", form, &sub); err != nil {
		return nil, err
	}
	return sub.toSubscription(), nil
}

// UpdateSubscription moves a subscription to a new price
func (p *HTTPProvider) UpdateSubscription(ctx context.Context, subscriptionID, priceCode string) (*ProviderSubscription, error) {
	form := url.Values{}
	form.Set("items[0][price]", priceCode)

	var sub providerSubscriptionResponse
	if err := p.post(ctx, "/v1/subscriptions/"+subscriptionID, form, &sub); err != nil {
		return nil, err
	}
	return sub.toSubscription(), nil
}

// CancelSubscription cancels a subscription at the provider
func (p *HTTPProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		p.apiBase+"/v1/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: cancel returned %d", ErrProvider, resp.StatusCode)
	}
	return nil
}

// VerifyWebhook checks the signature header (t=<unix>,v1=<hmac>) against
// the raw payload using the shared webhook secret, then decodes the event.
func (p *HTTPProvider) VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error) {
	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	expected := ComputeSignature(p.webhookSecret, timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID       string `json:"id"`
				Customer string `json:"customer"`
				Status   string `json:"status"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: decode event: %v", ErrProvider, err)
	}

	return &WebhookEvent{
		ID:             event.ID,
		Type:           event.Type,
		SubscriptionID: event.Data.Object.ID,
		CustomerID:     event.Data.Object.Customer,
		Status:         event.Data.Object.Status,
	}, nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>"
func ComputeSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, "", ErrBadSignature
			}
			timestamp = ts
		case "v1":
			signature = kv[1]
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", ErrBadSignature
	}
	return timestamp, signature, nil
}
