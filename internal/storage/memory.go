package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It mirrors the ordering and guard semantics of PostgresStore.
type MemoryStore struct {
	mu sync.Mutex

	users          map[uuid.UUID]*models.User
	refreshTokens  map[string]*models.RefreshToken
	tenants        map[uuid.UUID]*models.Tenant
	memberships    []*models.TenantMembership
	breweries      map[uuid.UUID]*models.Brewery
	employees      map[uuid.UUID]*models.Employee
	equipmentTypes map[uuid.UUID]*models.EquipmentType
	equipment      map[uuid.UUID]*models.Equipment
	plans          map[uuid.UUID]*models.Plan
	subscriptions  map[uuid.UUID]*models.Subscription
	qbAccounts     map[string]*models.QBAccount
	qbCustomers    map[string]*models.QBCustomer
	qbItems        map[string]*models.QBItem
	qbInvoices     map[string]*models.QBInvoice
	qbPayments     map[string]*models.QBPayment
	qbConnections  map[uuid.UUID]*models.QBConnection

	scopedCalls int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[uuid.UUID]*models.User),
		refreshTokens:  make(map[string]*models.RefreshToken),
		tenants:        make(map[uuid.UUID]*models.Tenant),
		breweries:      make(map[uuid.UUID]*models.Brewery),
		employees:      make(map[uuid.UUID]*models.Employee),
		equipmentTypes: make(map[uuid.UUID]*models.EquipmentType),
		equipment:      make(map[uuid.UUID]*models.Equipment),
		plans:          make(map[uuid.UUID]*models.Plan),
		subscriptions:  make(map[uuid.UUID]*models.Subscription),
		qbAccounts:     make(map[string]*models.QBAccount),
		qbCustomers:    make(map[string]*models.QBCustomer),
		qbItems:        make(map[string]*models.QBItem),
		qbInvoices:     make(map[string]*models.QBInvoice),
		qbPayments:     make(map[string]*models.QBPayment),
		qbConnections:  make(map[uuid.UUID]*models.QBConnection),
	}
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }

// BeginTx returns the store itself; memory operations are already atomic
func (s *MemoryStore) BeginTx(ctx context.Context) (Store, error) { return s, nil }

// Commit is a no-op
func (s *MemoryStore) Commit() error { return nil }

// Rollback is a no-op
func (s *MemoryStore) Rollback() error { return nil }

// WithTenant runs fn against the store and counts the scoped invocation
func (s *MemoryStore) WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(Store) error) error {
	if tenantID == uuid.Nil {
		return ErrInvalidData
	}
	s.mu.Lock()
	s.scopedCalls++
	s.mu.Unlock()
	return fn(s)
}

// ScopedCalls reports how many tenant-scoped data-layer calls were made
func (s *MemoryStore) ScopedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scopedCalls
}

// AddEquipment seeds an equipment row (test helper for the delete guard)
func (s *MemoryStore) AddEquipment(e *models.Equipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.equipment[e.ID] = e
}

// AddTenant seeds a tenant row
func (s *MemoryStore) AddTenant(t *models.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

// AddMembership seeds a tenant membership row
func (s *MemoryStore) AddMembership(m *models.TenantMembership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, m)
}

// AddBrewery seeds a brewery row
func (s *MemoryStore) AddBrewery(b *models.Brewery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.breweries[b.ID] = b
}

// AddPlan seeds a plan row
func (s *MemoryStore) AddPlan(p *models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.plans[p.ID] = p
}

// ========== Users ==========

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateKey
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// ========== Refresh tokens ==========

func (s *MemoryStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refreshTokens[token.TokenDigest]; ok {
		return ErrDuplicateKey
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	cp := *token
	s.refreshTokens[token.TokenDigest] = &cp
	return nil
}

func (s *MemoryStore) GetRefreshTokenByDigest(ctx context.Context, digest string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.refreshTokens[digest]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (s *MemoryStore) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range s.refreshTokens {
		if token.ID == id && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for digest, token := range s.refreshTokens {
		if token.ExpiresAt.Before(before) {
			delete(s.refreshTokens, digest)
			removed++
		}
	}
	return removed, nil
}

// ========== Tenants ==========

func (s *MemoryStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

func (s *MemoryStore) ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]*models.TenantMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.TenantMembership
	for _, m := range s.memberships {
		if m.UserID == userID && m.IsActive {
			cp := *m
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].TenantID.String() < result[j].TenantID.String()
	})

	return result, nil
}

func (s *MemoryStore) GetBreweryByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Brewery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.breweries {
		if b.TenantID == tenantID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// ========== Employees ==========

func (s *MemoryStore) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	now := time.Now()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	employee.IsActive = true

	cp := *employee
	s.employees[employee.ID] = &cp
	return nil
}

func (s *MemoryStore) GetEmployee(ctx context.Context, tenantID, id uuid.UUID) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	employee, ok := s.employees[id]
	if !ok || employee.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *employee
	return &cp, nil
}

func (s *MemoryStore) UpdateEmployee(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.employees[employee.ID]
	if !ok || existing.TenantID != employee.TenantID {
		return ErrNotFound
	}
	employee.UpdatedAt = time.Now()
	cp := *employee
	s.employees[employee.ID] = &cp
	return nil
}

func (s *MemoryStore) DeactivateEmployee(ctx context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	employee, ok := s.employees[id]
	if !ok || employee.TenantID != tenantID || !employee.IsActive {
		return ErrNotFound
	}
	employee.IsActive = false
	employee.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ListEmployees(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Employee
	for _, e := range s.employees {
		if e.TenantID == tenantID && e.IsActive {
			cp := *e
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})

	return result, nil
}

// ========== Equipment types ==========

func (s *MemoryStore) CreateEquipmentType(ctx context.Context, et *models.EquipmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if et.ID == uuid.Nil {
		et.ID = uuid.New()
	}
	now := time.Now()
	et.CreatedAt = now
	et.UpdatedAt = now

	cp := *et
	s.equipmentTypes[et.ID] = &cp
	return nil
}

func (s *MemoryStore) GetEquipmentType(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	et, ok := s.equipmentTypes[id]
	if !ok || et.TenantID != tenantID {
		return nil, ErrNotFound
	}
	cp := *et
	return &cp, nil
}

func (s *MemoryStore) UpdateEquipmentType(ctx context.Context, et *models.EquipmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.equipmentTypes[et.ID]
	if !ok || existing.TenantID != et.TenantID {
		return ErrNotFound
	}
	et.UpdatedAt = time.Now()
	cp := *et
	s.equipmentTypes[et.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteEquipmentType(ctx context.Context, tenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	et, ok := s.equipmentTypes[id]
	if !ok || et.TenantID != tenantID {
		return ErrNotFound
	}

	for _, e := range s.equipment {
		if e.EquipmentTypeID == id && e.TenantID == tenantID {
			return ErrReferenced
		}
	}

	delete(s.equipmentTypes, id)
	return nil
}

func (s *MemoryStore) ListEquipmentTypes(ctx context.Context, tenantID uuid.UUID) ([]*models.EquipmentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.EquipmentType
	for _, et := range s.equipmentTypes {
		if et.TenantID == tenantID {
			cp := *et
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// ========== Plans ==========

func (s *MemoryStore) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Plan
	for _, p := range s.plans {
		if p.IsActive {
			cp := *p
			result = append(result, &cp)
		}
	}

	// Unlimited sentinel sorts last; ties break on ascending user limit
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Unlimited() != b.Unlimited() {
			return !a.Unlimited()
		}
		if a.MaxEquipment != b.MaxEquipment {
			return a.MaxEquipment < b.MaxEquipment
		}
		return a.MaxUsers < b.MaxUsers
	})

	return result, nil
}

func (s *MemoryStore) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (s *MemoryStore) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, plan := range s.plans {
		if strings.EqualFold(plan.Name, name) {
			cp := *plan
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// ========== Subscriptions ==========

func (s *MemoryStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	cp := *sub
	s.subscriptions[sub.ID] = &cp
	return nil
}

func (s *MemoryStore) GetSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.Subscription
	for _, sub := range s.subscriptions {
		if sub.TenantID != tenantID {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) GetSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.ProviderSubscriptionID == providerSubscriptionID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.subscriptions[sub.ID]
	if !ok || existing.TenantID != sub.TenantID {
		return ErrNotFound
	}
	sub.UpdatedAt = time.Now()
	cp := *sub
	s.subscriptions[sub.ID] = &cp
	return nil
}

// ========== QuickBooks ==========

func qbKey(tenantID uuid.UUID, qbID string) string {
	return tenantID.String() + ":" + qbID
}

func (s *MemoryStore) UpsertQBAccount(ctx context.Context, a *models.QBAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.SyncedAt = time.Now()
	cp := *a
	s.qbAccounts[qbKey(a.TenantID, a.QBID)] = &cp
	return nil
}

func (s *MemoryStore) UpsertQBCustomer(ctx context.Context, c *models.QBCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.SyncedAt = time.Now()
	cp := *c
	s.qbCustomers[qbKey(c.TenantID, c.QBID)] = &cp
	return nil
}

func (s *MemoryStore) UpsertQBItem(ctx context.Context, i *models.QBItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.SyncedAt = time.Now()
	cp := *i
	s.qbItems[qbKey(i.TenantID, i.QBID)] = &cp
	return nil
}

func (s *MemoryStore) UpsertQBInvoice(ctx context.Context, inv *models.QBInvoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.SyncedAt = time.Now()
	cp := *inv
	s.qbInvoices[qbKey(inv.TenantID, inv.QBID)] = &cp
	return nil
}

func (s *MemoryStore) UpsertQBPayment(ctx context.Context, p *models.QBPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.SyncedAt = time.Now()
	cp := *p
	s.qbPayments[qbKey(p.TenantID, p.QBID)] = &cp
	return nil
}

func (s *MemoryStore) ListQBAccounts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBAccount, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.QBAccount
	for _, a := range s.qbAccounts {
		if a.TenantID == tenantID {
			cp := *a
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	return paginate(result, limit, offset), total, nil
}

func (s *MemoryStore) ListQBCustomers(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBCustomer, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.QBCustomer
	for _, c := range s.qbCustomers {
		if c.TenantID == tenantID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayName < result[j].DisplayName })
	total := int64(len(result))
	return paginate(result, limit, offset), total, nil
}

func (s *MemoryStore) ListQBItems(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.QBItem
	for _, i := range s.qbItems {
		if i.TenantID == tenantID {
			cp := *i
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	return paginate(result, limit, offset), total, nil
}

func (s *MemoryStore) ListQBInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBInvoice, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.QBInvoice
	for _, inv := range s.qbInvoices {
		if inv.TenantID == tenantID {
			cp := *inv
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TxnDate.After(result[j].TxnDate) })
	total := int64(len(result))
	return paginate(result, limit, offset), total, nil
}

func (s *MemoryStore) ListQBPayments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QBPayment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.QBPayment
	for _, p := range s.qbPayments {
		if p.TenantID == tenantID {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TxnDate.After(result[j].TxnDate) })
	total := int64(len(result))
	return paginate(result, limit, offset), total, nil
}

func (s *MemoryStore) GetQBSummary(ctx context.Context, tenantID uuid.UUID) (*models.QBSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &models.QBSummary{TenantID: tenantID}
	for _, a := range s.qbAccounts {
		if a.TenantID == tenantID {
			summary.AccountCount++
		}
	}
	for _, c := range s.qbCustomers {
		if c.TenantID == tenantID {
			summary.CustomerCount++
		}
	}
	for _, i := range s.qbItems {
		if i.TenantID == tenantID {
			summary.ItemCount++
		}
	}
	for _, inv := range s.qbInvoices {
		if inv.TenantID == tenantID {
			summary.InvoiceCount++
			summary.OpenBalance += inv.Balance
			summary.TotalInvoiced += inv.TotalAmount
		}
	}
	for _, p := range s.qbPayments {
		if p.TenantID == tenantID {
			summary.PaymentCount++
			summary.TotalPaid += p.Amount
		}
	}
	return summary, nil
}

func (s *MemoryStore) SaveQBConnection(ctx context.Context, conn *models.QBConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now
	cp := *conn
	s.qbConnections[conn.TenantID] = &cp
	return nil
}

func (s *MemoryStore) GetQBConnection(ctx context.Context, tenantID uuid.UUID) (*models.QBConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.qbConnections[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *conn
	return &cp, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
