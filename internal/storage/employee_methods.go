package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// ========== Employee Methods ==========

// CreateEmployee creates a new employee
func (s *PostgresStore) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}

	now := time.Now()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	employee.IsActive = true

	query := `
		INSERT INTO employees (
			id, created_at, updated_at, tenant_id, brewery_id,
			first_name, last_name, email, phone, title, is_active, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		employee.ID, employee.CreatedAt, employee.UpdatedAt, employee.TenantID,
		employee.BreweryID, employee.FirstName, employee.LastName, employee.Email,
		employee.Phone, employee.Title, employee.IsActive, employee.CreatedBy,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetEmployee gets an employee by ID within a tenant
func (s *PostgresStore) GetEmployee(ctx context.Context, tenantID, id uuid.UUID) (*models.Employee, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, brewery_id,
			   first_name, last_name, email, phone, title, is_active, created_by
		FROM employees
		WHERE id = $1 AND tenant_id = $2`

	employee := &models.Employee{}
	err := s.getDB().QueryRowContext(ctx, query, id, tenantID).Scan(
		&employee.ID, &employee.CreatedAt, &employee.UpdatedAt, &employee.TenantID,
		&employee.BreweryID, &employee.FirstName, &employee.LastName, &employee.Email,
		&employee.Phone, &employee.Title, &employee.IsActive, &employee.CreatedBy,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return employee, err
}

// UpdateEmployee updates an employee
func (s *PostgresStore) UpdateEmployee(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now()

	query := `
		UPDATE employees SET
			updated_at = $3, first_name = $4, last_name = $5, email = $6,
			phone = $7, title = $8, is_active = $9
		WHERE id = $1 AND tenant_id = $2`

	result, err := s.getDB().ExecContext(ctx, query,
		employee.ID, employee.TenantID, employee.UpdatedAt, employee.FirstName,
		employee.LastName, employee.Email, employee.Phone, employee.Title,
		employee.IsActive,
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

// DeactivateEmployee soft-deletes an employee by flagging it inactive
func (s *PostgresStore) DeactivateEmployee(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx,
		`UPDATE employees SET is_active = false, updated_at = $3
		 WHERE id = $1 AND tenant_id = $2 AND is_active = true`,
		id, tenantID, time.Now(),
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

// ListEmployees lists a tenant's active employees ordered by last name,
// then first name
func (s *PostgresStore) ListEmployees(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, brewery_id,
			   first_name, last_name, email, phone, title, is_active, created_by
		FROM employees
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY last_name, first_name`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		employee := &models.Employee{}
		err := rows.Scan(
			&employee.ID, &employee.CreatedAt, &employee.UpdatedAt, &employee.TenantID,
			&employee.BreweryID, &employee.FirstName, &employee.LastName, &employee.Email,
			&employee.Phone, &employee.Title, &employee.IsActive, &employee.CreatedBy,
		)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	return employees, rows.Err()
}
