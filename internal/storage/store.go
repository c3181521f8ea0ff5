package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
	// ErrReferenced is returned when a delete is refused because dependent
	// rows still reference the target.
	ErrReferenced = errors.New("referenced by dependent rows")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// WithTenant runs fn inside a transaction whose database session is
	// scoped to tenantID for row-level security. The scope is bound as a
	// parameter and is transaction-local, so it can never leak through a
	// pooled connection. Every tenant-scoped method additionally filters
	// by tenant id explicitly.
	WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(Store) error) error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Refresh token methods. Tokens are indexed by digest; ownership is
	// never established by scanning users.
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshTokenByDigest(ctx context.Context, digest string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)

	// Tenant registry methods (read-only here; provisioning owns writes)
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]*models.TenantMembership, error)
	GetBreweryByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Brewery, error)

	// Employee methods
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, tenantID, id uuid.UUID) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, employee *models.Employee) error
	DeactivateEmployee(ctx context.Context, tenantID, id uuid.UUID) error
	ListEmployees(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error)

	// Equipment type methods
	CreateEquipmentType(ctx context.Context, et *models.EquipmentType) error
	GetEquipmentType(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentType, error)
	UpdateEquipmentType(ctx context.Context, et *models.EquipmentType) error
	DeleteEquipmentType(ctx context.Context, tenantID, id uuid.UUID) error
	ListEquipmentTypes(ctx context.Context, tenantID uuid.UUID) ([]*models.EquipmentType, error)

	// Plan methods (reference data, not tenant-scoped)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetPlanByName(ctx context.Context, name string) (*models.Plan, error)

	// Subscription methods
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	// GetSubscriptionByProviderID locates a subscription from a webhook,
	// where no tenant context exists yet.
	GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error

	// QuickBooks sync methods. Upserts come from the sync consumer, reads
	// from the API; both are tenant-scoped.
	UpsertQBAccount(ctx context.Context, a *models.QBAccount) error
	UpsertQBCustomer(ctx context.Context, c *models.QBCustomer) error
	UpsertQBItem(ctx context.Context, i *models.QBItem) error
	UpsertQBInvoice(ctx context.Context, inv *models.QBInvoice) error
	UpsertQBPayment(ctx context.Context, p *models.QBPayment) error

	ListQBAccounts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBAccount, int64, error)
	ListQBCustomers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBCustomer, int64, error)
	ListQBItems(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBItem, int64, error)
	ListQBInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBInvoice, int64, error)
	ListQBPayments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBPayment, int64, error)
	GetQBSummary(ctx context.Context, tenantID uuid.UUID) (*models.QBSummary, error)

	SaveQBConnection(ctx context.Context, conn *models.QBConnection) error
	GetQBConnection(ctx context.Context, tenantID uuid.UUID) (*models.QBConnection, error)

	// Close the store
	Close() error
}
