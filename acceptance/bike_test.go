package acceptance

import (
	"net/http"
	"testing"
)

func TestCreateBike(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "admin-1", "Admin")

	body := map[string]string{"label": "SBE-001", "modelId": "model_pro", "location": "Library"}
	w := ts.POST("/bikes", body, "admin-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	b := ts.BikeState(t, "SBE-001")
	if b.Status != "Active" || b.BatteryLevel != 100 || b.AntiTheftActive {
		t.Errorf("new bike defaults wrong: status=%s battery=%d antiTheft=%v", b.Status, b.BatteryLevel, b.AntiTheftActive)
	}

	// Labels are unique, case-insensitively.
	body["label"] = "sbe-001"
	if w = ts.POST("/bikes", body, "admin-1"); w.Code != http.StatusConflict {
		t.Errorf("duplicate label: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	body = map[string]string{"label": "SBE-002", "modelId": "model_hover"}
	if w = ts.POST("/bikes", body, "admin-1"); w.Code != http.StatusNotFound {
		t.Errorf("unknown model: expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBikeEndpointsRequireAuth(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	if w := ts.GET("/bikes", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", w.Code)
	}
}

func TestBikeAdminEndpointsRequireAdmin(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	body := map[string]string{"label": "SBE-001", "modelId": "model_pro"}
	if w := ts.POST("/bikes", body, "stu-1"); w.Code != http.StatusForbidden {
		t.Errorf("student create: expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if w := ts.DELETE("/bikes/SBE-001", "stu-1"); w.Code != http.StatusForbidden {
		t.Errorf("student delete: expected 403, got %d", w.Code)
	}
}

func TestListBikesCarriesBadges(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestBike(t, "SBE-001", "model_pro")

	w := ts.GET("/bikes", "stu-1")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	bikes := decode[[]struct {
		Label  string   `json:"label"`
		Badges []string `json:"badges"`
	}](t, w)
	if len(bikes) != 1 {
		t.Fatalf("got %d bikes, want 1", len(bikes))
	}
	if len(bikes[0].Badges) == 0 {
		t.Error("pro bike on pro tier should expose badges")
	}
}

func TestDeleteBikePreservesLedger(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "stu-1", "Student")
	ts.CreateTestUser(t, "admin-1", "Admin")
	ts.SetBalance(t, "stu-1", 100)
	ts.CreateTestBike(t, "SBE-001", "model_pro")

	p := ride(t, ts, "SBE-001", "stu-1")
	ts.POST("/payments/"+p.ID.String()+"/charge", nil, "stu-1")

	// A ridden bike cannot be deleted; its trips and payments are history.
	if w := ts.DELETE("/bikes/SBE-001", "admin-1"); w.Code != http.StatusConflict {
		t.Errorf("delete ridden bike: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var paid int
	if err := ts.DB.Get(&paid, `SELECT count(*) FROM payments WHERE id = $1`, p.ID); err != nil {
		t.Fatalf("failed to count payments: %v", err)
	}
	if paid != 1 {
		t.Errorf("payment rows = %d, want 1", paid)
	}
	if got := ts.Balance(t, "stu-1"); got != 95 {
		t.Errorf("balance = %d, want 95", got)
	}

	// A bike with no history deletes fine.
	ts.CreateTestBike(t, "SBE-002", "model_pro")
	if w := ts.DELETE("/bikes/SBE-002", "admin-1"); w.Code != http.StatusNoContent {
		t.Errorf("delete unridden bike: expected 204, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStatusEditCannotTouchInUse(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "stu-1", "Student")
	ts.CreateTestUser(t, "admin-1", "Admin")
	ts.CreateTestBike(t, "SBE-001", "model_pro")

	// The edit form cannot fabricate a ride.
	w := ts.do(http.MethodPatch, "/bikes/SBE-001/status", map[string]string{"status": "In Use"}, "admin-1")
	if w.Code != http.StatusConflict {
		t.Errorf("set In Use: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Nor strand an open trip by yanking a ridden bike back to Active.
	if w = ts.POST("/bikes/SBE-001/unlock", nil, "stu-1"); w.Code != http.StatusOK {
		t.Fatalf("unlock: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = ts.do(http.MethodPatch, "/bikes/SBE-001/status", map[string]string{"status": "Active"}, "admin-1")
	if w.Code != http.StatusConflict {
		t.Errorf("edit ridden bike: expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if b := ts.BikeState(t, "SBE-001"); b.Status != "In Use" || b.CurrentTripID == nil {
		t.Errorf("ride disturbed by rejected edit: status=%s", b.Status)
	}
}

func TestAssignedBikeRestrictsUnlock(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	id := ts.CreateTestUser(t, "stu-1", "Student")
	ts.CreateTestUser(t, "admin-1", "Admin")
	ts.CreateTestBike(t, "SBE-001", "model_pro")
	ts.CreateTestBike(t, "SBE-002", "model_pro")

	w := ts.do(http.MethodPatch, "/users/"+id+"/assigned-bike", map[string]string{"label": "SBE-001"}, "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("assign bike: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if w = ts.POST("/bikes/SBE-002/unlock", nil, "stu-1"); w.Code != http.StatusConflict {
		t.Errorf("unlock of unassigned bike: expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if w = ts.POST("/bikes/SBE-001/unlock", nil, "stu-1"); w.Code != http.StatusOK {
		t.Errorf("unlock of assigned bike: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
