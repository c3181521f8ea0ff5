package oauth

import (
	"context"
	"net/url"
)

// MockProviderName is the provider tag for the dev/test mock
const MockProviderName = "mock"

// MockProvider serves the dev callback flow and tests. Any non-empty code
// is accepted; the identity is derived from the code so tests can steer it.
type MockProvider struct {
	// Identity overrides the derived identity when set
	Identity *ExternalIdentity
}

// Name returns the mock provider tag
func (p *MockProvider) Name() string {
	return MockProviderName
}

// AuthCodeURL returns a local callback URL carrying the state
func (p *MockProvider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("code", "mock-code")
	q.Set("state", state)
	return "/api/auth/oauth/mock-callback?" + q.Encode()
}

// Exchange accepts any non-empty code
func (p *MockProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	if code == "" {
		return nil, ErrAuthFailed
	}

	if p.Identity != nil {
		ident := *p.Identity
		ident.Provider = MockProviderName
		return &ident, nil
	}

	return &ExternalIdentity{
		Provider:   MockProviderName,
		ExternalID: "mock-" + code,
		Email:      code + "@example.com",
		FirstName:  "Mock",
		LastName:   "User",
	}, nil
}
