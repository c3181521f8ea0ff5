package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// fakeTokenStore is an in-memory RefreshTokenStore keyed by digest
type fakeTokenStore struct {
	tokens map[string]*models.RefreshToken
	// lookups counts digest lookups so tests can assert O(1) access paths
	lookups int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeTokenStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	cp := *token
	f.tokens[token.TokenDigest] = &cp
	return nil
}

func (f *fakeTokenStore) GetRefreshTokenByDigest(ctx context.Context, digest string) (*models.RefreshToken, error) {
	f.lookups++
	token, ok := f.tokens[digest]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *token
	return &cp, nil
}

func (f *fakeTokenStore) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	for _, token := range f.tokens {
		if token.ID == id {
			now := time.Now()
			token.RevokedAt = &now
			return nil
		}
	}
	return errors.New("not found")
}

func TestIssueAndValidate(t *testing.T) {
	store := newFakeTokenStore()
	m := NewRefreshManager(store, time.Hour)
	userID := uuid.New()

	raw, err := m.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if raw == "" {
		t.Fatal("Issue returned an empty token")
	}

	// Only the digest may be persisted
	if _, ok := store.tokens[raw]; ok {
		t.Error("raw token value was persisted")
	}
	if _, ok := store.tokens[HashToken(raw)]; !ok {
		t.Error("token digest was not persisted")
	}

	token, err := m.Validate(context.Background(), raw, &userID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if token.UserID != userID {
		t.Errorf("UserID = %s, want %s", token.UserID, userID)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	m := NewRefreshManager(newFakeTokenStore(), time.Hour)

	if _, err := m.Validate(context.Background(), "never-issued", nil); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("err = %v, want ErrTokenNotFound", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	store := newFakeTokenStore()
	m := NewRefreshManager(store, -time.Minute)

	raw, err := m.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Validate(context.Background(), raw, nil); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestValidateWrongUser(t *testing.T) {
	store := newFakeTokenStore()
	m := NewRefreshManager(store, time.Hour)

	raw, err := m.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := uuid.New()
	if _, err := m.Validate(context.Background(), raw, &other); !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("err = %v, want ErrTokenMismatch", err)
	}
}

func TestRotateRevokesOldToken(t *testing.T) {
	store := newFakeTokenStore()
	m := NewRefreshManager(store, time.Hour)
	userID := uuid.New()

	raw, err := m.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	token, err := m.Validate(context.Background(), raw, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	newRaw, err := m.Rotate(context.Background(), token)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if newRaw == raw {
		t.Error("Rotate returned the same token value")
	}

	if _, err := m.Validate(context.Background(), raw, nil); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("old token err = %v, want ErrTokenRevoked", err)
	}
	if _, err := m.Validate(context.Background(), newRaw, &userID); err != nil {
		t.Errorf("new token failed to validate: %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	store := newFakeTokenStore()
	m := NewRefreshManager(store, time.Hour)

	raw, err := m.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := m.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := m.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}

	if _, err := m.Validate(context.Background(), raw, nil); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("err = %v, want ErrTokenRevoked", err)
	}
}

func TestValidateSingleLookup(t *testing.T) {
	store := newFakeTokenStore()
	m := NewRefreshManager(store, time.Hour)

	raw, err := m.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	store.lookups = 0
	if _, err := m.Validate(context.Background(), raw, nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if store.lookups != 1 {
		t.Errorf("lookups = %d, want 1", store.lookups)
	}
}
