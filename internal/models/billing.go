package models

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedCapacity is the sentinel for plans without a capacity ceiling.
// Unlimited plans sort after every finite-capacity plan.
const UnlimitedCapacity = -1

// Plan is read-only reference data describing a subscription tier
type Plan struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	// ProviderCode is the payment provider's price identifier for this plan
	ProviderCode string `json:"providerCode,omitempty" db:"provider_code"`

	// MaxEquipment is the capacity limit; UnlimitedCapacity means no ceiling
	MaxEquipment int `json:"maxEquipment" db:"max_equipment"`
	MaxUsers     int `json:"maxUsers" db:"max_users"`

	MonthlyCents int64  `json:"monthlyCents" db:"monthly_cents"`
	Currency     string `json:"currency" db:"currency"`

	IsActive bool `json:"isActive" db:"is_active"`
}

// Unlimited reports whether the plan has the unlimited capacity sentinel.
func (p *Plan) Unlimited() bool {
	return p.MaxEquipment == UnlimitedCapacity
}

// Subscription lifecycle states as reported by the payment provider
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription links a tenant to a plan at the payment provider
type Subscription struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`
	PlanID   uuid.UUID `json:"planId" db:"plan_id"`

	ProviderCustomerID     string `json:"providerCustomerId,omitempty" db:"provider_customer_id"`
	ProviderSubscriptionID string `json:"providerSubscriptionId,omitempty" db:"provider_subscription_id"`

	Status           string     `json:"status" db:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty" db:"current_period_end"`
	CanceledAt       *time.Time `json:"canceledAt,omitempty" db:"canceled_at"`
}
