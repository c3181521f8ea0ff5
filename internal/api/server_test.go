package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/billing"
	"github.com/brewops/brewery-server/internal/cache"
	"github.com/brewops/brewery-server/internal/config"
	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/oauth"
	"github.com/brewops/brewery-server/internal/storage"
)

const testWebhookSecret = "whsec_test"

// testEnv wires a server against in-memory collaborators with one seeded
// tenant, brewery, user and membership.
type testEnv struct {
	server   *RESTServer
	store    *storage.MemoryStore
	payments *billing.MockProvider

	user      *models.User
	tenantID  uuid.UUID
	breweryID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
	}

	store := storage.NewMemoryStore()
	payments := billing.NewMockProvider(testWebhookSecret)
	providers := oauth.NewRegistry()
	providers.Register(&oauth.MockProvider{})

	server := NewRESTServer(cfg, store, cache.NewMemoryCache(), providers, payments)

	env := &testEnv{
		server:   server,
		store:    store,
		payments: payments,
		tenantID: uuid.New(),
	}

	env.user = &models.User{Email: "owner@brewery.test", FirstName: "Owner", IsActive: true}
	if err := store.CreateUser(context.Background(), env.user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	store.AddTenant(&models.Tenant{ID: env.tenantID, Name: "Test Brewing Co", IsActive: true})
	store.AddMembership(&models.TenantMembership{
		UserID:    env.user.ID,
		TenantID:  env.tenantID,
		Role:      "owner",
		IsActive:  true,
		CreatedAt: time.Now(),
	})

	brewery := &models.Brewery{TenantID: env.tenantID, Name: "Test Brewing Co"}
	store.AddBrewery(brewery)
	env.breweryID = brewery.ID

	return env
}

// token issues an access token for the seeded user
func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	signed, err := e.server.auth.GenerateAccessToken(e.user, nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return signed
}

// do performs a request against the router. A non-empty token becomes the
// bearer credential; body is JSON-encoded when non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the envelope's data field into out
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if !env.Success {
		t.Fatalf("success = false, message = %q", env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v (data %s)", err, env.Data)
		}
	}
}

// decodeBody unmarshals a raw (non-enveloped) response body
func decodeBody(rec *httptest.ResponseRecorder, out interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), out)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/employees", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/employees", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUnresolvedTenantFailsClosed(t *testing.T) {
	env := newTestEnv(t)

	// A user with no memberships, no header and no tenant claim
	stray := &models.User{Email: "stray@brewery.test", IsActive: true}
	if err := env.store.CreateUser(context.Background(), stray); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := env.server.auth.GenerateAccessToken(stray, nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	before := env.store.ScopedCalls()
	rec := env.do(t, http.MethodGet, "/api/employees", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if calls := env.store.ScopedCalls() - before; calls != 0 {
		t.Errorf("tenant-scoped data calls = %d, want 0", calls)
	}
}

func TestMalformedTenantHeaderFailsClosed(t *testing.T) {
	env := newTestEnv(t)

	// The seeded user has a valid membership, but a malformed header must
	// not fall through to it
	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t))
	req.Header.Set("X-Tenant-Id", "not-a-uuid")

	before := env.store.ScopedCalls()
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if calls := env.store.ScopedCalls() - before; calls != 0 {
		t.Errorf("tenant-scoped data calls = %d, want 0", calls)
	}
}
