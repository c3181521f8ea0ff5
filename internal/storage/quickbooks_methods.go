package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// ========== QuickBooks Sync Methods ==========
//
// Synced entities are written by the sync consumer and read by the API.
// Upserts key on (tenant_id, qb_id) so replayed sync messages are
// idempotent.

// UpsertQBAccount inserts or updates a synced account
func (s *PostgresStore) UpsertQBAccount(ctx context.Context, a *models.QBAccount) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.SyncedAt = time.Now()

	query := `
		INSERT INTO qb_accounts (id, tenant_id, qb_id, name, account_type, balance, currency, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, qb_id) DO UPDATE SET
			name = EXCLUDED.name, account_type = EXCLUDED.account_type,
			balance = EXCLUDED.balance, currency = EXCLUDED.currency,
			synced_at = EXCLUDED.synced_at`

	_, err := s.getDB().ExecContext(ctx, query,
		a.ID, a.TenantID, a.QBID, a.Name, a.AccountType, a.Balance, a.Currency, a.SyncedAt)
	return err
}

// UpsertQBCustomer inserts or updates a synced customer
func (s *PostgresStore) UpsertQBCustomer(ctx context.Context, c *models.QBCustomer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.SyncedAt = time.Now()

	query := `
		INSERT INTO qb_customers (id, tenant_id, qb_id, display_name, email, balance, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, qb_id) DO UPDATE SET
			display_name = EXCLUDED.display_name, email = EXCLUDED.email,
			balance = EXCLUDED.balance, synced_at = EXCLUDED.synced_at`

	_, err := s.getDB().ExecContext(ctx, query,
		c.ID, c.TenantID, c.QBID, c.DisplayName, c.Email, c.Balance, c.SyncedAt)
	return err
}

// UpsertQBItem inserts or updates a synced item
func (s *PostgresStore) UpsertQBItem(ctx context.Context, i *models.QBItem) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.SyncedAt = time.Now()

	query := `
		INSERT INTO qb_items (id, tenant_id, qb_id, name, type, unit_price, qty_on_hand, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, qb_id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type,
			unit_price = EXCLUDED.unit_price, qty_on_hand = EXCLUDED.qty_on_hand,
			synced_at = EXCLUDED.synced_at`

	_, err := s.getDB().ExecContext(ctx, query,
		i.ID, i.TenantID, i.QBID, i.Name, i.Type, i.UnitPrice, i.QtyOnHand, i.SyncedAt)
	return err
}

// UpsertQBInvoice inserts or updates a synced invoice
func (s *PostgresStore) UpsertQBInvoice(ctx context.Context, inv *models.QBInvoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.SyncedAt = time.Now()

	query := `
		INSERT INTO qb_invoices (id, tenant_id, qb_id, doc_number, customer_qb_id, txn_date, total_amount, balance, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, qb_id) DO UPDATE SET
			doc_number = EXCLUDED.doc_number, customer_qb_id = EXCLUDED.customer_qb_id,
			txn_date = EXCLUDED.txn_date, total_amount = EXCLUDED.total_amount,
			balance = EXCLUDED.balance, synced_at = EXCLUDED.synced_at`

	_, err := s.getDB().ExecContext(ctx, query,
		inv.ID, inv.TenantID, inv.QBID, inv.DocNumber, inv.CustomerQBID,
		inv.TxnDate, inv.TotalAmount, inv.Balance, inv.SyncedAt)
	return err
}

// UpsertQBPayment inserts or updates a synced payment
func (s *PostgresStore) UpsertQBPayment(ctx context.Context, p *models.QBPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.SyncedAt = time.Now()

	query := `
		INSERT INTO qb_payments (id, tenant_id, qb_id, customer_qb_id, txn_date, amount, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, qb_id) DO UPDATE SET
			customer_qb_id = EXCLUDED.customer_qb_id, txn_date = EXCLUDED.txn_date,
			amount = EXCLUDED.amount, synced_at = EXCLUDED.synced_at`

	_, err := s.getDB().ExecContext(ctx, query,
		p.ID, p.TenantID, p.QBID, p.CustomerQBID, p.TxnDate, p.Amount, p.SyncedAt)
	return err
}

// ========== QuickBooks Read Methods ==========

func (s *PostgresStore) countRows(ctx context.Context, table string, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_id = $1`, table), tenantID,
	).Scan(&count)
	return count, err
}

// ListQBAccounts lists a tenant's synced accounts ordered by name
func (s *PostgresStore) ListQBAccounts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBAccount, int64, error) {
	count, err := s.countRows(ctx, "qb_accounts", tenantID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, tenant_id, qb_id, name, account_type, balance, currency, synced_at
		FROM qb_accounts
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []*models.QBAccount
	for rows.Next() {
		a := &models.QBAccount{}
		err := rows.Scan(&a.ID, &a.TenantID, &a.QBID, &a.Name, &a.AccountType,
			&a.Balance, &a.Currency, &a.SyncedAt)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}

	return accounts, count, rows.Err()
}

// ListQBCustomers lists a tenant's synced customers ordered by display name
func (s *PostgresStore) ListQBCustomers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBCustomer, int64, error) {
	count, err := s.countRows(ctx, "qb_customers", tenantID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, tenant_id, qb_id, display_name, email, balance, synced_at
		FROM qb_customers
		WHERE tenant_id = $1
		ORDER BY display_name
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []*models.QBCustomer
	for rows.Next() {
		c := &models.QBCustomer{}
		err := rows.Scan(&c.ID, &c.TenantID, &c.QBID, &c.DisplayName, &c.Email,
			&c.Balance, &c.SyncedAt)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}

	return customers, count, rows.Err()
}

// ListQBItems lists a tenant's synced items ordered by name
func (s *PostgresStore) ListQBItems(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBItem, int64, error) {
	count, err := s.countRows(ctx, "qb_items", tenantID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, tenant_id, qb_id, name, type, unit_price, qty_on_hand, synced_at
		FROM qb_items
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*models.QBItem
	for rows.Next() {
		i := &models.QBItem{}
		err := rows.Scan(&i.ID, &i.TenantID, &i.QBID, &i.Name, &i.Type,
			&i.UnitPrice, &i.QtyOnHand, &i.SyncedAt)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}

	return items, count, rows.Err()
}

// ListQBInvoices lists a tenant's synced invoices, newest transaction first
func (s *PostgresStore) ListQBInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBInvoice, int64, error) {
	count, err := s.countRows(ctx, "qb_invoices", tenantID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, tenant_id, qb_id, doc_number, customer_qb_id, txn_date,
			   total_amount, balance, synced_at
		FROM qb_invoices
		WHERE tenant_id = $1
		ORDER BY txn_date DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*models.QBInvoice
	for rows.Next() {
		inv := &models.QBInvoice{}
		err := rows.Scan(&inv.ID, &inv.TenantID, &inv.QBID, &inv.DocNumber,
			&inv.CustomerQBID, &inv.TxnDate, &inv.TotalAmount, &inv.Balance, &inv.SyncedAt)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, count, rows.Err()
}

// ListQBPayments lists a tenant's synced payments, newest transaction first
func (s *PostgresStore) ListQBPayments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBPayment, int64, error) {
	count, err := s.countRows(ctx, "qb_payments", tenantID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, tenant_id, qb_id, customer_qb_id, txn_date, amount, synced_at
		FROM qb_payments
		WHERE tenant_id = $1
		ORDER BY txn_date DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*models.QBPayment
	for rows.Next() {
		p := &models.QBPayment{}
		err := rows.Scan(&p.ID, &p.TenantID, &p.QBID, &p.CustomerQBID,
			&p.TxnDate, &p.Amount, &p.SyncedAt)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}

	return payments, count, rows.Err()
}

// GetQBSummary aggregates a tenant's synced accounting data
func (s *PostgresStore) GetQBSummary(ctx context.Context, tenantID uuid.UUID) (*models.QBSummary, error) {
	summary := &models.QBSummary{TenantID: tenantID}

	query := `
		SELECT
			(SELECT COUNT(*) FROM qb_accounts WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM qb_customers WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM qb_items WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM qb_invoices WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM qb_payments WHERE tenant_id = $1),
			COALESCE((SELECT SUM(balance) FROM qb_invoices WHERE tenant_id = $1), 0),
			COALESCE((SELECT SUM(total_amount) FROM qb_invoices WHERE tenant_id = $1), 0),
			COALESCE((SELECT SUM(amount) FROM qb_payments WHERE tenant_id = $1), 0)`

	err := s.getDB().QueryRowContext(ctx, query, tenantID).Scan(
		&summary.AccountCount, &summary.CustomerCount, &summary.ItemCount,
		&summary.InvoiceCount, &summary.PaymentCount,
		&summary.OpenBalance, &summary.TotalInvoiced, &summary.TotalPaid,
	)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// ========== QuickBooks Connection Methods ==========

// SaveQBConnection inserts or updates the tenant's provider linkage
func (s *PostgresStore) SaveQBConnection(ctx context.Context, conn *models.QBConnection) error {
	now := time.Now()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	query := `
		INSERT INTO qb_connections (tenant_id, realm_id, access_token_enc, refresh_token_enc, token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id) DO UPDATE SET
			realm_id = EXCLUDED.realm_id,
			access_token_enc = EXCLUDED.access_token_enc,
			refresh_token_enc = EXCLUDED.refresh_token_enc,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at`

	_, err := s.getDB().ExecContext(ctx, query,
		conn.TenantID, conn.RealmID, conn.AccessTokenEnc, conn.RefreshTokenEnc,
		conn.TokenExpiresAt, conn.CreatedAt, conn.UpdatedAt)
	return err
}

// GetQBConnection gets the tenant's provider linkage
func (s *PostgresStore) GetQBConnection(ctx context.Context, tenantID uuid.UUID) (*models.QBConnection, error) {
	query := `
		SELECT tenant_id, realm_id, access_token_enc, refresh_token_enc,
			   token_expires_at, created_at, updated_at
		FROM qb_connections
		WHERE tenant_id = $1`

	conn := &models.QBConnection{}
	err := s.getDB().QueryRowContext(ctx, query, tenantID).Scan(
		&conn.TenantID, &conn.RealmID, &conn.AccessTokenEnc, &conn.RefreshTokenEnc,
		&conn.TokenExpiresAt, &conn.CreatedAt, &conn.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return conn, err
}
