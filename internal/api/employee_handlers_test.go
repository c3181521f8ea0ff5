package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

func createEmployee(t *testing.T, env *testEnv, first, last string) uuid.UUID {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/employees", env.token(t), map[string]string{
		"firstName": first,
		"lastName":  last,
		"email":     first + "@brewery.test",
		"title":     "Brewer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var out struct {
		Success    bool      `json:"success"`
		EmployeeID uuid.UUID `json:"employee_id"`
	}
	if err := decodeBody(rec, &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !out.Success || out.EmployeeID == uuid.Nil {
		t.Fatalf("unexpected create response: %s", rec.Body.String())
	}
	return out.EmployeeID
}

func TestEmployeeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	id := createEmployee(t, env, "Anna", "Braun")
	createEmployee(t, env, "Mia", "Weber")
	createEmployee(t, env, "Ben", "Braun")

	// List is ordered by last name, then first name
	rec := env.do(t, http.MethodGet, "/api/employees", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var employees []*models.Employee
	decodeData(t, rec, &employees)
	if len(employees) != 3 {
		t.Fatalf("list len = %d, want 3", len(employees))
	}
	wantOrder := []string{"Anna", "Ben", "Mia"}
	for i, e := range employees {
		if e.FirstName != wantOrder[i] {
			t.Errorf("employees[%d] = %s, want %s", i, e.FirstName, wantOrder[i])
		}
		if e.TenantID != env.tenantID {
			t.Errorf("employee %s has tenant %s, want %s", e.ID, e.TenantID, env.tenantID)
		}
		if e.BreweryID != env.breweryID {
			t.Errorf("employee %s has brewery %s, want %s", e.ID, e.BreweryID, env.breweryID)
		}
	}

	// Get
	rec = env.do(t, http.MethodGet, "/api/employees/"+id.String(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got models.Employee
	decodeData(t, rec, &got)
	if got.CreatedBy != env.user.ID {
		t.Errorf("CreatedBy = %s, want %s", got.CreatedBy, env.user.ID)
	}

	// Update
	rec = env.do(t, http.MethodPut, "/api/employees/"+id.String(), token, map[string]string{
		"firstName": "Anna",
		"lastName":  "Braun",
		"title":     "Head Brewer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var updated models.Employee
	decodeData(t, rec, &updated)
	if updated.Title != "Head Brewer" {
		t.Errorf("Title = %q, want %q", updated.Title, "Head Brewer")
	}

	// Soft delete
	rec = env.do(t, http.MethodDelete, "/api/employees/"+id.String(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/employees", token, nil)
	decodeData(t, rec, &employees)
	if len(employees) != 2 {
		t.Errorf("list len after delete = %d, want 2", len(employees))
	}

	// Deleting again is a 404
	rec = env.do(t, http.MethodDelete, "/api/employees/"+id.String(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestEmployeeValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/employees", env.token(t), map[string]string{
		"firstName": "",
		"lastName":  "Braun",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEmployeeUnknownID(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	rec := env.do(t, http.MethodGet, "/api/employees/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/employees/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestEmployeeCrossTenantHidden(t *testing.T) {
	env := newTestEnv(t)
	id := createEmployee(t, env, "Anna", "Braun")

	// Same user, explicitly scoped to another tenant via the header
	otherTenant := uuid.New()
	env.store.AddTenant(&models.Tenant{ID: otherTenant, Name: "Other Brewing", IsActive: true})

	req := httptest.NewRequest(http.MethodGet, "/api/employees/"+id.String(), nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t))
	req.Header.Set("X-Tenant-Id", otherTenant.String())

	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant get status = %d, want 404", rec.Code)
	}
}
