package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// ========== Tenant Methods ==========

// GetTenant gets a tenant by ID
func (s *PostgresStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT id, created_at, updated_at, name, is_active, suspended_at
		FROM tenants
		WHERE id = $1`

	tenant := &models.Tenant{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.Name,
		&tenant.IsActive, &tenant.SuspendedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return tenant, err
}

// ListActiveMemberships lists a user's active tenant memberships, newest
// first. The ordering is the tie-break when a user belongs to more than
// one active tenant: the most recently granted membership wins.
func (s *PostgresStore) ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]*models.TenantMembership, error) {
	query := `
		SELECT user_id, tenant_id, role, is_active, created_at, updated_at
		FROM tenant_memberships
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC, tenant_id`

	rows, err := s.getDB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.TenantMembership
	for rows.Next() {
		m := &models.TenantMembership{}
		err := rows.Scan(&m.UserID, &m.TenantID, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

// GetBreweryByTenant resolves the tenant's brewery aggregate
func (s *PostgresStore) GetBreweryByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Brewery, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, name, city, country
		FROM breweries
		WHERE tenant_id = $1`

	brewery := &models.Brewery{}
	err := s.getDB().QueryRowContext(ctx, query, tenantID).Scan(
		&brewery.ID, &brewery.CreatedAt, &brewery.UpdatedAt, &brewery.TenantID,
		&brewery.Name, &brewery.City, &brewery.Country,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return brewery, err
}
