package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brewops/brewery-server/internal/config"
)

// HTTPProvider talks to a standard authorization-code provider over HTTPS
type HTTPProvider struct {
	name   string
	cfg    config.OAuthProviderConfig
	client *http.Client
}

// NewHTTPProvider creates a provider from configuration
func NewHTTPProvider(name string, cfg config.OAuthProviderConfig) *HTTPProvider {
	return &HTTPProvider{
		name: name,
		cfg:  cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the provider tag stored on users
func (p *HTTPProvider) Name() string {
	return p.name
}

// AuthCodeURL builds the provider's authorization URL
func (p *HTTPProvider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("redirect_uri", p.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	return p.cfg.AuthURL + "?" + q.Encode()
}

// Exchange trades an authorization code for a verified identity
func (p *HTTPProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	if code == "" {
		return nil, ErrAuthFailed
	}

	accessToken, err := p.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return p.fetchIdentity(ctx, accessToken)
}

func (p *HTTPProvider) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("redirect_uri", p.cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrAuthFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrAuthFailed, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}

	return tokenResp.AccessToken, nil
}

func (p *HTTPProvider) fetchIdentity(ctx context.Context, accessToken string) (*ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo endpoint returned %d", ErrAuthFailed, resp.StatusCode)
	}

	var info struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrAuthFailed, err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", ErrAuthFailed)
	}

	return &ExternalIdentity{
		Provider:   p.name,
		ExternalID: info.Sub,
		Email:      info.Email,
		FirstName:  info.GivenName,
		LastName:   info.FamilyName,
	}, nil
}
