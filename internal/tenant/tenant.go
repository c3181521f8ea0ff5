// Package tenant resolves and carries the per-request tenant scope. All
// handlers go through the Resolver; none read headers or claims directly.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoTenant is returned when no tenant can be resolved for a request.
// Callers must fail closed: reject the request rather than proceed with a
// null scope.
var ErrNoTenant = errors.New("no tenant resolved")

// HeaderName is the request header carrying an explicit tenant id
const HeaderName = "X-Tenant-Id"

type contextKey string

const tenantIDKey contextKey = "tenant_id"

// NewContext returns a context carrying the resolved tenant id
func NewContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// FromContext extracts the resolved tenant id from the context
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(tenantIDKey).(uuid.UUID)
	return tenantID, ok
}
