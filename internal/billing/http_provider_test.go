package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func signedHeader(secret string, payload []byte) string {
	ts := time.Now().Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(secret, ts, payload))
}

func TestVerifyWebhook(t *testing.T) {
	p := NewHTTPProvider("https://pay.example.com", "sk_test", "whsec_abc")
	payload := []byte(`{
		"id": "evt_42",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "past_due"}}
	}`)

	event, err := p.VerifyWebhook(payload, signedHeader("whsec_abc", payload))
	if err != nil {
		t.Fatalf("VerifyWebhook: %v", err)
	}

	if event.ID != "evt_42" {
		t.Errorf("ID = %s", event.ID)
	}
	if event.Type != "customer.subscription.updated" {
		t.Errorf("Type = %s", event.Type)
	}
	if event.SubscriptionID != "sub_1" || event.CustomerID != "cus_1" || event.Status != "past_due" {
		t.Errorf("object fields = %+v", event)
	}
}

func TestVerifyWebhookWrongSecret(t *testing.T) {
	p := NewHTTPProvider("https://pay.example.com", "sk_test", "whsec_abc")
	payload := []byte(`{"id":"evt_1","type":"x","data":{"object":{}}}`)

	_, err := p.VerifyWebhook(payload, signedHeader("whsec_other", payload))
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyWebhookTamperedPayload(t *testing.T) {
	p := NewHTTPProvider("https://pay.example.com", "sk_test", "whsec_abc")
	payload := []byte(`{"id":"evt_1","type":"x","data":{"object":{}}}`)
	header := signedHeader("whsec_abc", payload)

	tampered := append([]byte{}, payload...)
	tampered[2] = 'X'

	_, err := p.VerifyWebhook(tampered, header)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyWebhookMalformedHeader(t *testing.T) {
	p := NewHTTPProvider("https://pay.example.com", "sk_test", "whsec_abc")
	payload := []byte(`{}`)

	for _, header := range []string{"", "v1=abc", "t=123", "garbage", "t=abc,v1=def"} {
		if _, err := p.VerifyWebhook(payload, header); !errors.Is(err, ErrBadSignature) {
			t.Errorf("header %q: err = %v, want ErrBadSignature", header, err)
		}
	}
}

func TestMockProviderRoundTrip(t *testing.T) {
	p := NewMockProvider("whsec_abc")
	ctx := context.Background()

	customerID, err := p.CreateCustomer(ctx, "owner@brewery.test", "tenant-1")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	sub, err := p.CreateSubscription(ctx, customerID, "price_starter")
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if sub.Status != "active" {
		t.Errorf("status = %s, want active", sub.Status)
	}

	if err := p.CancelSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
	if len(p.Canceled) != 1 || p.Canceled[0] != sub.ID {
		t.Errorf("Canceled = %v", p.Canceled)
	}

	if err := p.CancelSubscription(ctx, "sub_missing"); !errors.Is(err, ErrProvider) {
		t.Errorf("cancel unknown err = %v, want ErrProvider", err)
	}
}
