package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/pkg/crypto"
)

// Refresh token errors
var (
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("refresh token expired")
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenMismatch = errors.New("refresh token does not belong to user")
)

// RefreshTokenStore is the persistence surface the refresh manager needs
type RefreshTokenStore interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshTokenByDigest(ctx context.Context, digest string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
}

// HashToken returns the hex SHA-256 digest of an opaque token value. Only
// the digest is ever persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshManager issues and validates opaque refresh tokens. Tokens are
// looked up by digest, so validation cost is independent of the user count.
type RefreshManager struct {
	store RefreshTokenStore
	ttl   time.Duration
}

// NewRefreshManager creates a refresh token manager
func NewRefreshManager(store RefreshTokenStore, ttl time.Duration) *RefreshManager {
	return &RefreshManager{
		store: store,
		ttl:   ttl,
	}
}

// Issue creates a new opaque refresh token for the user and persists its
// digest. The raw value is returned exactly once.
func (m *RefreshManager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	raw, err := crypto.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}

	token := &models.RefreshToken{
		UserID:      userID,
		TokenDigest: HashToken(raw),
		ExpiresAt:   time.Now().Add(m.ttl),
	}

	if err := m.store.CreateRefreshToken(ctx, token); err != nil {
		return "", fmt.Errorf("persist refresh token: %w", err)
	}

	return raw, nil
}

// Validate checks a raw refresh token and returns its record. When userID
// is non-nil the token must belong to that user.
func (m *RefreshManager) Validate(ctx context.Context, raw string, userID *uuid.UUID) (*models.RefreshToken, error) {
	token, err := m.store.GetRefreshTokenByDigest(ctx, HashToken(raw))
	if err != nil {
		return nil, ErrTokenNotFound
	}

	if token.Revoked() {
		return nil, ErrTokenRevoked
	}
	if token.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}
	if userID != nil && token.UserID != *userID {
		return nil, ErrTokenMismatch
	}

	return token, nil
}

// Rotate revokes the given token record and issues a replacement for the
// same user.
func (m *RefreshManager) Rotate(ctx context.Context, token *models.RefreshToken) (string, error) {
	if err := m.store.RevokeRefreshToken(ctx, token.ID); err != nil {
		return "", fmt.Errorf("revoke refresh token: %w", err)
	}
	return m.Issue(ctx, token.UserID)
}

// Revoke invalidates a raw refresh token
func (m *RefreshManager) Revoke(ctx context.Context, raw string) error {
	token, err := m.store.GetRefreshTokenByDigest(ctx, HashToken(raw))
	if err != nil {
		return ErrTokenNotFound
	}
	if token.Revoked() {
		return nil
	}
	return m.store.RevokeRefreshToken(ctx, token.ID)
}
