package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee belongs to exactly one brewery/tenant. Deletion is soft: rows
// are flagged inactive rather than removed.
type Employee struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID  uuid.UUID `json:"tenantId" db:"tenant_id"`
	BreweryID uuid.UUID `json:"breweryId" db:"brewery_id"`

	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email,omitempty" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	Title     string `json:"title,omitempty" db:"title"`

	IsActive bool `json:"isActive" db:"is_active"`

	CreatedBy uuid.UUID `json:"createdBy" db:"created_by"`
}
