package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// ========== Equipment Type Methods ==========

// CreateEquipmentType creates a new equipment type
func (s *PostgresStore) CreateEquipmentType(ctx context.Context, et *models.EquipmentType) error {
	if et.ID == uuid.Nil {
		et.ID = uuid.New()
	}

	now := time.Now()
	et.CreatedAt = now
	et.UpdatedAt = now

	query := `
		INSERT INTO equipment_types (
			id, created_at, updated_at, tenant_id, brewery_id,
			name, description, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		et.ID, et.CreatedAt, et.UpdatedAt, et.TenantID, et.BreweryID,
		et.Name, et.Description, et.CreatedBy,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetEquipmentType gets an equipment type by ID within a tenant
func (s *PostgresStore) GetEquipmentType(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentType, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, brewery_id,
			   name, description, created_by
		FROM equipment_types
		WHERE id = $1 AND tenant_id = $2`

	et := &models.EquipmentType{}
	err := s.getDB().QueryRowContext(ctx, query, id, tenantID).Scan(
		&et.ID, &et.CreatedAt, &et.UpdatedAt, &et.TenantID, &et.BreweryID,
		&et.Name, &et.Description, &et.CreatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return et, err
}

// UpdateEquipmentType updates an equipment type
func (s *PostgresStore) UpdateEquipmentType(ctx context.Context, et *models.EquipmentType) error {
	et.UpdatedAt = time.Now()

	query := `
		UPDATE equipment_types SET
			updated_at = $3, brewery_id = $4, name = $5, description = $6
		WHERE id = $1 AND tenant_id = $2`

	result, err := s.getDB().ExecContext(ctx, query,
		et.ID, et.TenantID, et.UpdatedAt, et.BreweryID, et.Name, et.Description,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteEquipmentType hard-deletes an equipment type. The delete is refused
// with ErrReferenced while equipment rows still reference the type; guard
// and delete run on the same transaction when called under WithTenant.
func (s *PostgresStore) DeleteEquipmentType(ctx context.Context, tenantID, id uuid.UUID) error {
	var count int64
	err := s.getDB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM equipment WHERE equipment_type_id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrReferenced
	}

	result, err := s.getDB().ExecContext(ctx,
		`DELETE FROM equipment_types WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListEquipmentTypes lists a tenant's equipment types ordered by name
func (s *PostgresStore) ListEquipmentTypes(ctx context.Context, tenantID uuid.UUID) ([]*models.EquipmentType, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, brewery_id,
			   name, description, created_by
		FROM equipment_types
		WHERE tenant_id = $1
		ORDER BY name`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*models.EquipmentType
	for rows.Next() {
		et := &models.EquipmentType{}
		err := rows.Scan(
			&et.ID, &et.CreatedAt, &et.UpdatedAt, &et.TenantID, &et.BreweryID,
			&et.Name, &et.Description, &et.CreatedBy,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, et)
	}

	return types, rows.Err()
}
