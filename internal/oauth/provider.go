// Package oauth is the narrow interface to the external identity provider.
// The provider authenticates users out of band; this package only builds
// authorization URLs and exchanges authorization codes for a verified
// identity.
package oauth

import (
	"context"
	"errors"
	"fmt"
)

// Provider errors
var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	// ErrAuthFailed wraps provider-reported failures; they map to an
	// authentication failure, never a server error.
	ErrAuthFailed = errors.New("oauth authentication failed")
)

// ExternalIdentity is the verified identity reported by a provider
type ExternalIdentity struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"externalId"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// Provider is an external identity provider
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

// Registry holds configured providers by name
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns a provider by name
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}
