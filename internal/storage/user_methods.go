package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// ========== User Methods ==========

// CreateUser creates a new user
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, created_at, updated_at, email, first_name, last_name,
			external_id, provider, password_hash, is_admin, is_active,
			last_login_at, settings
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Email, user.FirstName,
		user.LastName, user.ExternalID, user.Provider, user.PasswordHash,
		user.IsAdmin, user.IsActive, user.LastLoginAt, user.Settings,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetUser gets a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, created_at, updated_at, email, first_name, last_name,
			   external_id, provider, password_hash, is_admin, is_active,
			   last_login_at, settings
		FROM users
		WHERE id = $1`

	return s.scanUser(s.getDB().QueryRowContext(ctx, query, id))
}

// GetUserByEmail gets a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, created_at, updated_at, email, first_name, last_name,
			   external_id, provider, password_hash, is_admin, is_active,
			   last_login_at, settings
		FROM users
		WHERE lower(email) = lower($1)`

	return s.scanUser(s.getDB().QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Email,
		&user.FirstName, &user.LastName, &user.ExternalID, &user.Provider,
		&user.PasswordHash, &user.IsAdmin, &user.IsActive,
		&user.LastLoginAt, &user.Settings,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return user, err
}

// UpdateUser updates a user
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			updated_at = $2, email = $3, first_name = $4, last_name = $5,
			external_id = $6, provider = $7, password_hash = $8,
			is_admin = $9, is_active = $10, last_login_at = $11, settings = $12
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.UpdatedAt, user.Email, user.FirstName, user.LastName,
		user.ExternalID, user.Provider, user.PasswordHash, user.IsAdmin,
		user.IsActive, user.LastLoginAt, user.Settings,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ========== Refresh Token Methods ==========

// CreateRefreshToken persists a refresh token record
func (s *PostgresStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()

	query := `
		INSERT INTO refresh_tokens (id, created_at, user_id, token_digest, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.getDB().ExecContext(ctx, query,
		token.ID, token.CreatedAt, token.UserID, token.TokenDigest,
		token.ExpiresAt, token.RevokedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetRefreshTokenByDigest looks a refresh token up by its digest. The
// token_digest column carries a unique index, so the lookup is O(log n)
// regardless of how many users exist.
func (s *PostgresStore) GetRefreshTokenByDigest(ctx context.Context, digest string) (*models.RefreshToken, error) {
	query := `
		SELECT id, created_at, user_id, token_digest, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_digest = $1`

	token := &models.RefreshToken{}
	err := s.getDB().QueryRowContext(ctx, query, digest).Scan(
		&token.ID, &token.CreatedAt, &token.UserID, &token.TokenDigest,
		&token.ExpiresAt, &token.RevokedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return token, err
}

// RevokeRefreshToken marks a refresh token revoked
func (s *PostgresStore) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteExpiredRefreshTokens removes tokens that expired before the cutoff
func (s *PostgresStore) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.getDB().ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
