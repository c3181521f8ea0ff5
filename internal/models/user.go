package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform user. Users are created either through the
// local login path or on first successful OAuth authentication; email is
// the unique business key for lookup.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Email     string `json:"email" db:"email"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`

	// External identity provider linkage. ExternalID and Provider stay
	// empty for local-only accounts.
	ExternalID string `json:"externalId,omitempty" db:"external_id"`
	Provider   string `json:"provider,omitempty" db:"provider"`

	PasswordHash string `json:"-" db:"password_hash"`

	IsAdmin  bool `json:"isAdmin" db:"is_admin"`
	IsActive bool `json:"isActive" db:"is_active"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`

	Settings Variables `json:"settings" db:"settings"`
}

// RefreshToken is a long-lived opaque credential exchanged for new access
// tokens. Only the SHA-256 digest of the opaque value is stored; lookup is
// by digest, never by scanning users.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	UserID      uuid.UUID `json:"userId" db:"user_id"`
	TokenDigest string    `json:"-" db:"token_digest"`

	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	RevokedAt *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
}

// Revoked reports whether the token has been revoked.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token expired before now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
