package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/oauth"
	"github.com/brewops/brewery-server/pkg/crypto"
)

// tokenResponse carries the issued token pair
type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *models.User `json:"user"`
}

// issueTokens builds the token pair for an authenticated user
func (s *RESTServer) issueTokens(ctx context.Context, user *models.User) (*tokenResponse, error) {
	access, err := s.auth.GenerateAccessToken(user, nil)
	if err != nil {
		return nil, err
	}

	refresh, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.auth.AccessTokenTTL().Seconds()),
		User:         user,
	}, nil
}

// handleLogin authenticates a local account with email and password
func (s *RESTServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and bad password
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.PasswordHash == "" || !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.IsActive {
		s.respondError(w, http.StatusUnauthorized, "account is disabled")
		return
	}

	s.recordLogin(r.Context(), user)

	tokens, err := s.issueTokens(r.Context(), user)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, tokens)
}

// handleOAuthURL returns the provider authorization URL for the frontend
// to redirect to
func (s *RESTServer) handleOAuthURL(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("provider")
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "provider is required")
		return
	}

	provider, err := s.providers.Get(name)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	state, err := crypto.GenerateRandomString(16)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, map[string]string{
		"url":   provider.AuthCodeURL(state),
		"state": state,
	})
}

// handleOAuthExchange exchanges a provider authorization code for a local
// session. The user record is created on first login and backfilled on
// later ones; repeating an exchange never duplicates a user.
func (s *RESTServer) handleOAuthExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider" validate:"required"`
		Code     string `json:"code" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.completeOAuth(w, r, req.Provider, req.Code)
}

// handleMockCallback completes the mock provider flow from a browser
// redirect. Only wired when the mock provider is enabled.
func (s *RESTServer) handleMockCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	s.completeOAuth(w, r, oauth.MockProviderName, code)
}

// completeOAuth runs the shared tail of both OAuth entry points
func (s *RESTServer) completeOAuth(w http.ResponseWriter, r *http.Request, providerName, code string) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	identity, err := provider.Exchange(r.Context(), code)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	user, err := s.reconcileIdentity(r.Context(), identity)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	if !user.IsActive {
		s.respondError(w, http.StatusUnauthorized, "account is disabled")
		return
	}

	s.recordLogin(r.Context(), user)

	tokens, err := s.issueTokens(r.Context(), user)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, tokens)
}

// reconcileIdentity maps a verified external identity onto a user record.
// Lookup is by email; missing users are created, existing ones get empty
// fields backfilled. Values the user already has are never overwritten.
func (s *RESTServer) reconcileIdentity(ctx context.Context, identity *oauth.ExternalIdentity) (*models.User, error) {
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", oauth.ErrAuthFailed)
	}

	user, err := s.store.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		user = &models.User{
			Email:      identity.Email,
			FirstName:  identity.FirstName,
			LastName:   identity.LastName,
			ExternalID: identity.ExternalID,
			Provider:   identity.Provider,
			IsActive:   true,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	}

	changed := false
	if user.ExternalID == "" && identity.ExternalID != "" {
		user.ExternalID = identity.ExternalID
		user.Provider = identity.Provider
		changed = true
	}
	if user.FirstName == "" && identity.FirstName != "" {
		user.FirstName = identity.FirstName
		changed = true
	}
	if user.LastName == "" && identity.LastName != "" {
		user.LastName = identity.LastName
		changed = true
	}

	if changed {
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return user, nil
}

// recordLogin stamps last_login_at, best effort
func (s *RESTServer) recordLogin(ctx context.Context, user *models.User) {
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to record login time")
	}
}

// handleRefresh rotates a refresh token and issues a new access token
func (s *RESTServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.refresh.Validate(r.Context(), req.RefreshToken, nil)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	user, err := s.store.GetUser(r.Context(), token.UserID)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	if !user.IsActive {
		s.respondError(w, http.StatusUnauthorized, "account is disabled")
		return
	}

	newRefresh, err := s.refresh.Rotate(r.Context(), token)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	access, err := s.auth.GenerateAccessToken(user, nil)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, &tokenResponse{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(s.auth.AccessTokenTTL().Seconds()),
		User:         user,
	})
}

// handleRevoke invalidates a refresh token
func (s *RESTServer) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.refresh.Revoke(r.Context(), req.RefreshToken); err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.respondSuccess(w, http.StatusOK, map[string]string{"status": "revoked"})
}
