package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated organizational scope. All business data is
// partitioned by tenant; tenant CRUD itself is handled by the provisioning
// service, this API only reads the registry.
type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name string `json:"name" db:"name"`

	IsActive    bool       `json:"isActive" db:"is_active"`
	SuspendedAt *time.Time `json:"suspendedAt,omitempty" db:"suspended_at"`
}

// TenantMembership associates a user with a tenant
type TenantMembership struct {
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	TenantID  uuid.UUID `json:"tenantId" db:"tenant_id"`
	Role      string    `json:"role" db:"role"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Brewery is the operational aggregate owned by a tenant. The current data
// model keeps one brewery per tenant.
type Brewery struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`

	Name    string `json:"name" db:"name"`
	City    string `json:"city,omitempty" db:"city"`
	Country string `json:"country,omitempty" db:"country"`
}
