package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// fakeMemberships returns canned memberships and records whether it was hit
type fakeMemberships struct {
	memberships []*models.TenantMembership
	err         error
	called      bool
}

func (f *fakeMemberships) ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]*models.TenantMembership, error) {
	f.called = true
	return f.memberships, f.err
}

func TestResolveHeaderWins(t *testing.T) {
	headerTenant := uuid.New()
	claimTenant := uuid.New()
	lookup := &fakeMemberships{}
	r := NewResolver(lookup)

	got, err := r.Resolve(context.Background(), headerTenant.String(), &claimTenant, uuid.New())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != headerTenant {
		t.Errorf("tenant = %s, want header tenant %s", got, headerTenant)
	}
	if lookup.called {
		t.Error("membership lookup was consulted despite a header")
	}
}

func TestResolveMalformedHeaderFailsClosed(t *testing.T) {
	claimTenant := uuid.New()
	lookup := &fakeMemberships{
		memberships: []*models.TenantMembership{{TenantID: uuid.New()}},
	}
	r := NewResolver(lookup)

	// A bad header must not fall through to the claim or memberships
	_, err := r.Resolve(context.Background(), "not-a-uuid", &claimTenant, uuid.New())
	if !errors.Is(err, ErrNoTenant) {
		t.Fatalf("err = %v, want ErrNoTenant", err)
	}
	if lookup.called {
		t.Error("membership lookup was consulted for a malformed header")
	}
}

func TestResolveNilUUIDHeaderFailsClosed(t *testing.T) {
	r := NewResolver(&fakeMemberships{})

	_, err := r.Resolve(context.Background(), uuid.Nil.String(), nil, uuid.New())
	if !errors.Is(err, ErrNoTenant) {
		t.Errorf("err = %v, want ErrNoTenant", err)
	}
}

func TestResolveClaimFallback(t *testing.T) {
	claimTenant := uuid.New()
	lookup := &fakeMemberships{}
	r := NewResolver(lookup)

	got, err := r.Resolve(context.Background(), "", &claimTenant, uuid.New())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != claimTenant {
		t.Errorf("tenant = %s, want claim tenant %s", got, claimTenant)
	}
	if lookup.called {
		t.Error("membership lookup was consulted despite a claim")
	}
}

func TestResolveMembershipFallback(t *testing.T) {
	newest := uuid.New()
	older := uuid.New()
	lookup := &fakeMemberships{
		memberships: []*models.TenantMembership{
			{TenantID: newest, CreatedAt: time.Now()},
			{TenantID: older, CreatedAt: time.Now().Add(-time.Hour)},
		},
	}
	r := NewResolver(lookup)

	got, err := r.Resolve(context.Background(), "", nil, uuid.New())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != newest {
		t.Errorf("tenant = %s, want newest membership %s", got, newest)
	}
}

func TestResolveNoMemberships(t *testing.T) {
	r := NewResolver(&fakeMemberships{})

	_, err := r.Resolve(context.Background(), "", nil, uuid.New())
	if !errors.Is(err, ErrNoTenant) {
		t.Errorf("err = %v, want ErrNoTenant", err)
	}
}

func TestResolveNilUser(t *testing.T) {
	lookup := &fakeMemberships{
		memberships: []*models.TenantMembership{{TenantID: uuid.New()}},
	}
	r := NewResolver(lookup)

	_, err := r.Resolve(context.Background(), "", nil, uuid.Nil)
	if !errors.Is(err, ErrNoTenant) {
		t.Errorf("err = %v, want ErrNoTenant", err)
	}
	if lookup.called {
		t.Error("membership lookup was consulted for a nil user")
	}
}

func TestContextRoundTrip(t *testing.T) {
	tenantID := uuid.New()
	ctx := NewContext(context.Background(), tenantID)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext: tenant missing")
	}
	if got != tenantID {
		t.Errorf("tenant = %s, want %s", got, tenantID)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext on an empty context reported a tenant")
	}
}
