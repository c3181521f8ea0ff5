package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/brewops/brewery-server/internal/models"
)

func createEquipmentType(t *testing.T, env *testEnv, name string) *equipmentTypeResponse {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/equipmenttype", env.token(t), map[string]string{
		"name":        name,
		"description": name + " vessels",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var out equipmentTypeResponse
	decodeData(t, rec, &out)
	return &out
}

func TestEquipmentTypeCreate(t *testing.T) {
	env := newTestEnv(t)

	created := createEquipmentType(t, env, "Fermenter")
	if created.EquipmentTypeID == uuid.Nil {
		t.Error("equipmentTypeId missing from create response")
	}
	if created.TenantID != env.tenantID {
		t.Errorf("tenantId = %s, want %s", created.TenantID, env.tenantID)
	}
	if created.CreatedBy != env.user.ID {
		t.Errorf("createdBy = %s, want %s", created.CreatedBy, env.user.ID)
	}
	if created.Name != "Fermenter" {
		t.Errorf("name = %q, want %q", created.Name, "Fermenter")
	}
}

func TestEquipmentTypeGetRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	created := createEquipmentType(t, env, "Brite Tank")

	rec := env.do(t, http.MethodGet, "/api/equipmenttype/"+created.EquipmentTypeID.String(), env.token(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var got equipmentTypeResponse
	decodeData(t, rec, &got)
	if got.EquipmentTypeID != created.EquipmentTypeID {
		t.Errorf("id = %s, want %s", got.EquipmentTypeID, created.EquipmentTypeID)
	}
	if got.Description != "Brite Tank vessels" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestEquipmentTypeListOrdered(t *testing.T) {
	env := newTestEnv(t)
	createEquipmentType(t, env, "Kettle")
	createEquipmentType(t, env, "Brite Tank")
	createEquipmentType(t, env, "Fermenter")

	rec := env.do(t, http.MethodGet, "/api/equipmenttype", env.token(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var types []*equipmentTypeResponse
	decodeData(t, rec, &types)

	want := []string{"Brite Tank", "Fermenter", "Kettle"}
	if len(types) != len(want) {
		t.Fatalf("len = %d, want %d", len(types), len(want))
	}
	for i, et := range types {
		if et.Name != want[i] {
			t.Errorf("types[%d] = %s, want %s", i, et.Name, want[i])
		}
	}
}

func TestEquipmentTypeUpdate(t *testing.T) {
	env := newTestEnv(t)
	created := createEquipmentType(t, env, "Kettle")

	rec := env.do(t, http.MethodPut, "/api/equipmenttype/"+created.EquipmentTypeID.String(), env.token(t), map[string]string{
		"name":        "Boil Kettle",
		"description": "steam fired",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var updated equipmentTypeResponse
	decodeData(t, rec, &updated)
	if updated.Name != "Boil Kettle" || updated.Description != "steam fired" {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestEquipmentTypeDeleteReferencedConflict(t *testing.T) {
	env := newTestEnv(t)
	created := createEquipmentType(t, env, "Fermenter")

	env.store.AddEquipment(&models.Equipment{
		TenantID:        env.tenantID,
		BreweryID:       env.breweryID,
		EquipmentTypeID: created.EquipmentTypeID,
		Name:            "FV-01",
	})

	rec := env.do(t, http.MethodDelete, "/api/equipmenttype/"+created.EquipmentTypeID.String(), env.token(t), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}

	// Still retrievable after the refused delete
	rec = env.do(t, http.MethodGet, "/api/equipmenttype/"+created.EquipmentTypeID.String(), env.token(t), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get after refused delete status = %d, want 200", rec.Code)
	}
}

func TestEquipmentTypeDeleteUnreferenced(t *testing.T) {
	env := newTestEnv(t)
	created := createEquipmentType(t, env, "Kettle")

	rec := env.do(t, http.MethodDelete, "/api/equipmenttype/"+created.EquipmentTypeID.String(), env.token(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/equipmenttype/"+created.EquipmentTypeID.String(), env.token(t), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestEquipmentTypeValidation(t *testing.T) {
	env := newTestEnv(t)

	for name, body := range map[string]map[string]string{
		"missing name":  {"description": "x"},
		"name too short": {"name": "x"},
		"bad brewery id": {"name": "Kettle", "breweryId": "nope"},
	} {
		rec := env.do(t, http.MethodPost, "/api/equipmenttype", env.token(t), body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}
