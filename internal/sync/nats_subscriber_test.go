package sync

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/pkg/crypto"
)

func upsertMsg(t *testing.T, tenantID uuid.UUID, entity string, payload interface{}) *nats.Msg {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &nats.Msg{
		Subject: "quickbooks." + tenantID.String() + "." + entity + ".upsert",
		Data:    data,
	}
}

func TestHandleUpsertAccount(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := NewNATSSubscriber(nil, store, nil)
	tenantID := uuid.New()

	sub.handleUpsert(upsertMsg(t, tenantID, "account", &models.QBAccount{
		QBID: "1", Name: "Checking", AccountType: "Bank", Balance: 500,
	}))

	accounts, total, err := store.ListQBAccounts(context.Background(), tenantID, 10, 0)
	if err != nil {
		t.Fatalf("ListQBAccounts: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if accounts[0].TenantID != tenantID {
		t.Errorf("TenantID = %s, want subject tenant %s", accounts[0].TenantID, tenantID)
	}
	if accounts[0].Balance != 500 {
		t.Errorf("Balance = %v, want 500", accounts[0].Balance)
	}
}

func TestHandleUpsertForcesSubjectTenant(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := NewNATSSubscriber(nil, store, nil)
	subjectTenant := uuid.New()
	payloadTenant := uuid.New()

	// A payload claiming another tenant is pinned to the subject's tenant
	sub.handleUpsert(upsertMsg(t, subjectTenant, "customer", &models.QBCustomer{
		TenantID: payloadTenant, QBID: "c1", DisplayName: "Taproom LLC",
	}))

	_, total, err := store.ListQBCustomers(context.Background(), payloadTenant, 10, 0)
	if err != nil {
		t.Fatalf("ListQBCustomers: %v", err)
	}
	if total != 0 {
		t.Errorf("payload tenant rows = %d, want 0", total)
	}

	_, total, err = store.ListQBCustomers(context.Background(), subjectTenant, 10, 0)
	if err != nil {
		t.Fatalf("ListQBCustomers: %v", err)
	}
	if total != 1 {
		t.Errorf("subject tenant rows = %d, want 1", total)
	}
}

func TestHandleUpsertRepeatedMessage(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := NewNATSSubscriber(nil, store, nil)
	tenantID := uuid.New()

	for i := 0; i < 2; i++ {
		sub.handleUpsert(upsertMsg(t, tenantID, "item", &models.QBItem{
			QBID: "i1", Name: "Pale Ale Keg", UnitPrice: 120,
		}))
	}

	_, total, err := store.ListQBItems(context.Background(), tenantID, 10, 0)
	if err != nil {
		t.Fatalf("ListQBItems: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 after duplicate delivery", total)
	}
}

func TestHandleUpsertBadSubject(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := NewNATSSubscriber(nil, store, nil)

	before := store.ScopedCalls()

	sub.handleUpsert(&nats.Msg{Subject: "quickbooks.upsert", Data: []byte(`{}`)})
	sub.handleUpsert(&nats.Msg{Subject: "quickbooks.not-a-uuid.account.upsert", Data: []byte(`{}`)})

	if calls := store.ScopedCalls() - before; calls != 0 {
		t.Errorf("data-layer calls = %d, want 0 for bad subjects", calls)
	}
}

func TestHandleConnectionEncryptsTokens(t *testing.T) {
	store := storage.NewMemoryStore()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sub := NewNATSSubscriber(nil, store, key)
	tenantID := uuid.New()

	payload, err := json.Marshal(map[string]string{
		"realmId":      "realm-1",
		"accessToken":  "qb-access",
		"refreshToken": "qb-refresh",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	sub.handleConnection(&nats.Msg{
		Subject: "quickbooks." + tenantID.String() + ".connection.upsert",
		Data:    payload,
	})

	conn, err := store.GetQBConnection(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("GetQBConnection: %v", err)
	}
	if conn.RealmID != "realm-1" {
		t.Errorf("RealmID = %s", conn.RealmID)
	}
	if string(conn.AccessTokenEnc) == "qb-access" {
		t.Error("access token stored in cleartext")
	}

	plain, err := crypto.Decrypt(key, conn.AccessTokenEnc)
	if err != nil {
		t.Fatalf("decrypt access token: %v", err)
	}
	if string(plain) != "qb-access" {
		t.Errorf("decrypted token = %q, want %q", plain, "qb-access")
	}
}

func TestHandleConnectionWithoutKeyDropped(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := NewNATSSubscriber(nil, store, nil)
	tenantID := uuid.New()

	sub.handleConnection(&nats.Msg{
		Subject: "quickbooks." + tenantID.String() + ".connection.upsert",
		Data:    []byte(`{"realmId":"realm-1","accessToken":"a","refreshToken":"r"}`),
	})

	if _, err := store.GetQBConnection(context.Background(), tenantID); err == nil {
		t.Error("connection stored despite missing token key")
	}
}

func TestHandleUpsertUnknownEntityIgnored(t *testing.T) {
	store := storage.NewMemoryStore()
	sub := NewNATSSubscriber(nil, store, nil)
	tenantID := uuid.New()

	sub.handleUpsert(upsertMsg(t, tenantID, "widget", map[string]string{"qbId": "w1"}))

	summary, err := store.GetQBSummary(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("GetQBSummary: %v", err)
	}
	if summary.AccountCount+summary.CustomerCount+summary.ItemCount+summary.InvoiceCount+summary.PaymentCount != 0 {
		t.Errorf("unexpected rows after unknown entity: %+v", summary)
	}
}
