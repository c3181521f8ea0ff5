package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// MembershipLookup is the storage surface the resolver needs. Memberships
// are expected newest-first.
type MembershipLookup interface {
	ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]*models.TenantMembership, error)
}

// Resolver derives the tenant scope for a request from, in order of
// precedence: the X-Tenant-Id header, the tenant_id token claim, and the
// authenticated user's newest active membership.
type Resolver struct {
	memberships MembershipLookup
}

// NewResolver creates a tenant resolver
func NewResolver(memberships MembershipLookup) *Resolver {
	return &Resolver{
		memberships: memberships,
	}
}

// Resolve produces the tenant id for a request. headerValue is the raw
// X-Tenant-Id header (may be empty), claimTenant the tenant_id claim (may
// be nil), userID the authenticated user. A malformed header counts as
// unresolved; it never falls through to a weaker source.
func (r *Resolver) Resolve(ctx context.Context, headerValue string, claimTenant *uuid.UUID, userID uuid.UUID) (uuid.UUID, error) {
	if headerValue != "" {
		tenantID, err := uuid.Parse(headerValue)
		if err != nil || tenantID == uuid.Nil {
			return uuid.Nil, ErrNoTenant
		}
		return tenantID, nil
	}

	if claimTenant != nil && *claimTenant != uuid.Nil {
		return *claimTenant, nil
	}

	if userID == uuid.Nil {
		return uuid.Nil, ErrNoTenant
	}

	memberships, err := r.memberships.ListActiveMemberships(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(memberships) == 0 {
		return uuid.Nil, ErrNoTenant
	}

	// Newest active membership wins when a user belongs to several tenants
	return memberships[0].TenantID, nil
}
