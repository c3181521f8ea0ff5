package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// ========== Plan Methods ==========

const planColumns = `id, created_at, updated_at, name, description, provider_code,
			   max_equipment, max_users, monthly_cents, currency, is_active`

// ListPlans lists active plans ordered by capacity ascending. The unlimited
// sentinel (-1) sorts after every finite capacity; ties break on ascending
// user limit.
func (s *PostgresStore) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE is_active = true
		ORDER BY CASE WHEN max_equipment < 0 THEN 1 ELSE 0 END, max_equipment, max_users`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

// GetPlan gets a plan by ID
func (s *PostgresStore) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	row := s.getDB().QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = $1`, id)

	plan, err := scanPlan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return plan, err
}

// GetPlanByName gets a plan by name
func (s *PostgresStore) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	row := s.getDB().QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE lower(name) = lower($1)`, name)

	plan, err := scanPlan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return plan, err
}

func scanPlan(scan func(dest ...interface{}) error) (*models.Plan, error) {
	plan := &models.Plan{}
	err := scan(
		&plan.ID, &plan.CreatedAt, &plan.UpdatedAt, &plan.Name, &plan.Description,
		&plan.ProviderCode, &plan.MaxEquipment, &plan.MaxUsers,
		&plan.MonthlyCents, &plan.Currency, &plan.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ========== Subscription Methods ==========

// CreateSubscription creates a subscription record
func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query := `
		INSERT INTO subscriptions (
			id, created_at, updated_at, tenant_id, plan_id,
			provider_customer_id, provider_subscription_id, status,
			current_period_end, canceled_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		sub.ID, sub.CreatedAt, sub.UpdatedAt, sub.TenantID, sub.PlanID,
		sub.ProviderCustomerID, sub.ProviderSubscriptionID, sub.Status,
		sub.CurrentPeriodEnd, sub.CanceledAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetSubscriptionByTenant gets the tenant's subscription
func (s *PostgresStore) GetSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, plan_id,
			   provider_customer_id, provider_subscription_id, status,
			   current_period_end, canceled_at
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	sub := &models.Subscription{}
	err := s.getDB().QueryRowContext(ctx, query, tenantID).Scan(
		&sub.ID, &sub.CreatedAt, &sub.UpdatedAt, &sub.TenantID, &sub.PlanID,
		&sub.ProviderCustomerID, &sub.ProviderSubscriptionID, &sub.Status,
		&sub.CurrentPeriodEnd, &sub.CanceledAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return sub, err
}

// GetSubscriptionByProviderID gets a subscription by the payment provider's
// subscription id. Used by webhook handling, which has no tenant context.
func (s *PostgresStore) GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	query := `
		SELECT id, created_at, updated_at, tenant_id, plan_id,
			   provider_customer_id, provider_subscription_id, status,
			   current_period_end, canceled_at
		FROM subscriptions
		WHERE provider_subscription_id = $1`

	sub := &models.Subscription{}
	err := s.getDB().QueryRowContext(ctx, query, providerSubscriptionID).Scan(
		&sub.ID, &sub.CreatedAt, &sub.UpdatedAt, &sub.TenantID, &sub.PlanID,
		&sub.ProviderCustomerID, &sub.ProviderSubscriptionID, &sub.Status,
		&sub.CurrentPeriodEnd, &sub.CanceledAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return sub, err
}

// UpdateSubscription updates a subscription record
func (s *PostgresStore) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now()

	query := `
		UPDATE subscriptions SET
			updated_at = $3, plan_id = $4, provider_customer_id = $5,
			provider_subscription_id = $6, status = $7,
			current_period_end = $8, canceled_at = $9
		WHERE id = $1 AND tenant_id = $2`

	result, err := s.getDB().ExecContext(ctx, query,
		sub.ID, sub.TenantID, sub.UpdatedAt, sub.PlanID,
		sub.ProviderCustomerID, sub.ProviderSubscriptionID, sub.Status,
		sub.CurrentPeriodEnd, sub.CanceledAt,
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
