package models

import (
	"time"

	"github.com/google/uuid"
)

// EquipmentType is a tenant-owned catalog entry describing a class of
// brewing equipment. Deletion is hard but refused while equipment rows
// still reference the type.
type EquipmentType struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID  uuid.UUID  `json:"tenantId" db:"tenant_id"`
	BreweryID *uuid.UUID `json:"breweryId,omitempty" db:"brewery_id"`

	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	CreatedBy uuid.UUID `json:"createdBy" db:"created_by"`
}

// Equipment is a physical unit of a given equipment type
type Equipment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID        uuid.UUID `json:"tenantId" db:"tenant_id"`
	BreweryID       uuid.UUID `json:"breweryId" db:"brewery_id"`
	EquipmentTypeID uuid.UUID `json:"equipmentTypeId" db:"equipment_type_id"`

	Name           string  `json:"name" db:"name"`
	SerialNumber   string  `json:"serialNumber,omitempty" db:"serial_number"`
	CapacityLiters float64 `json:"capacityLiters,omitempty" db:"capacity_liters"`

	IsActive bool `json:"isActive" db:"is_active"`
}
