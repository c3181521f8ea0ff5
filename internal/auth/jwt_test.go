package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/config"
	"github.com/brewops/brewery-server/internal/models"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	user := &models.User{
		ID:      uuid.New(),
		Email:   "brewer@example.com",
		IsAdmin: true,
	}
	tenantID := uuid.New()

	signed, err := m.GenerateAccessToken(user, &tenantID)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != user.ID {
		t.Errorf("UserID = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %s, want %s", claims.Email, user.Email)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
	if claims.TenantID == nil || *claims.TenantID != tenantID {
		t.Errorf("TenantID = %v, want %s", claims.TenantID, tenantID)
	}
}

func TestValidateTokenNilTenant(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	signed, err := m.GenerateAccessToken(&models.User{ID: uuid.New(), Email: "a@b.co"}, nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TenantID != nil {
		t.Errorf("TenantID = %v, want nil", claims.TenantID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	signed, err := m.GenerateAccessToken(&models.User{ID: uuid.New()}, nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := NewJWTManager(&config.JWTConfig{Secret: "other-secret", AccessTokenTTL: time.Minute})
	if _, err := other.ValidateToken(signed); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	m := NewJWTManager(cfg)

	signed, err := m.GenerateAccessToken(&models.User{ID: uuid.New()}, nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := m.ValidateToken(signed); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}
