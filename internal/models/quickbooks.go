package models

import (
	"time"

	"github.com/google/uuid"
)

// QuickBooks entities are synced from the accounting provider by the sync
// pipeline and are read-only from this API's perspective. Every row is
// keyed by tenant plus the provider-side entity id.

// QBAccount is a synced chart-of-accounts entry
type QBAccount struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`

	QBID        string  `json:"qbId" db:"qb_id"`
	Name        string  `json:"name" db:"name"`
	AccountType string  `json:"accountType" db:"account_type"`
	Balance     float64 `json:"balance" db:"balance"`
	Currency    string  `json:"currency" db:"currency"`

	SyncedAt time.Time `json:"syncedAt" db:"synced_at"`
}

// QBCustomer is a synced customer record
type QBCustomer struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`

	QBID        string  `json:"qbId" db:"qb_id"`
	DisplayName string  `json:"displayName" db:"display_name"`
	Email       string  `json:"email,omitempty" db:"email"`
	Balance     float64 `json:"balance" db:"balance"`

	SyncedAt time.Time `json:"syncedAt" db:"synced_at"`
}

// QBItem is a synced product/service item
type QBItem struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`

	QBID      string  `json:"qbId" db:"qb_id"`
	Name      string  `json:"name" db:"name"`
	Type      string  `json:"type" db:"type"`
	UnitPrice float64 `json:"unitPrice" db:"unit_price"`
	QtyOnHand float64 `json:"qtyOnHand" db:"qty_on_hand"`

	SyncedAt time.Time `json:"syncedAt" db:"synced_at"`
}

// QBInvoice is a synced invoice header
type QBInvoice struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`

	QBID         string    `json:"qbId" db:"qb_id"`
	DocNumber    string    `json:"docNumber" db:"doc_number"`
	CustomerQBID string    `json:"customerQbId" db:"customer_qb_id"`
	TxnDate      time.Time `json:"txnDate" db:"txn_date"`
	TotalAmount  float64   `json:"totalAmount" db:"total_amount"`
	Balance      float64   `json:"balance" db:"balance"`

	SyncedAt time.Time `json:"syncedAt" db:"synced_at"`
}

// QBPayment is a synced payment record
type QBPayment struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`

	QBID         string    `json:"qbId" db:"qb_id"`
	CustomerQBID string    `json:"customerQbId" db:"customer_qb_id"`
	TxnDate      time.Time `json:"txnDate" db:"txn_date"`
	Amount       float64   `json:"amount" db:"amount"`

	SyncedAt time.Time `json:"syncedAt" db:"synced_at"`
}

// QBSummary aggregates a tenant's synced accounting data
type QBSummary struct {
	TenantID      uuid.UUID `json:"tenantId"`
	AccountCount  int64     `json:"accountCount"`
	CustomerCount int64     `json:"customerCount"`
	ItemCount     int64     `json:"itemCount"`
	InvoiceCount  int64     `json:"invoiceCount"`
	PaymentCount  int64     `json:"paymentCount"`
	OpenBalance   float64   `json:"openBalance"`
	TotalInvoiced float64   `json:"totalInvoiced"`
	TotalPaid     float64   `json:"totalPaid"`
}

// QBConnection stores the tenant's accounting provider linkage. The OAuth
// tokens are AES-GCM encrypted at rest.
type QBConnection struct {
	TenantID uuid.UUID `json:"tenantId" db:"tenant_id"`
	RealmID  string    `json:"realmId" db:"realm_id"`

	AccessTokenEnc  []byte     `json:"-" db:"access_token_enc"`
	RefreshTokenEnc []byte     `json:"-" db:"refresh_token_enc"`
	TokenExpiresAt  *time.Time `json:"tokenExpiresAt,omitempty" db:"token_expires_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
