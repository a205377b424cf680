package acceptance

import (
	"net/http"
	"testing"
)

func TestUpdateUserRoleAndStatus(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	ts.CreateTestUser(t, "admin-1", "Admin")
	id := ts.CreateTestUser(t, "stu-1", "Student")

	w := ts.do(http.MethodPatch, "/users/"+id, map[string]string{"role": "Technician"}, "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("promote: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	techs := decode[[]struct {
		ID string `json:"id"`
	}](t, ts.GET("/technicians", "admin-1"))
	if len(techs) != 1 || techs[0].ID != id {
		t.Errorf("promoted user missing from technicians list: %+v", techs)
	}

	w = ts.do(http.MethodPatch, "/users/"+id, map[string]string{"status": "Suspended"}, "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("suspend: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	u := decode[struct {
		Role   string `json:"role"`
		Status string `json:"status"`
	}](t, w)
	if u.Role != "Technician" || u.Status != "Suspended" {
		t.Errorf("after suspend: role=%s status=%s, want Technician/Suspended", u.Role, u.Status)
	}
}

func TestUpdateUserRejectsBadValues(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	adminID := ts.CreateTestUser(t, "admin-1", "Admin")
	id := ts.CreateTestUser(t, "stu-1", "Student")

	if w := ts.do(http.MethodPatch, "/users/"+id, map[string]string{"role": "Overlord"}, "admin-1"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown role: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if w := ts.do(http.MethodPatch, "/users/"+id, map[string]string{"role": "Admin"}, "admin-1"); w.Code != http.StatusBadRequest {
		t.Errorf("promotion to admin: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if w := ts.do(http.MethodPatch, "/users/"+id, map[string]string{"status": "Gone"}, "admin-1"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// Admin accounts are not editable, so the last admin cannot demote
	// themselves into a lockout.
	if w := ts.do(http.MethodPatch, "/users/"+adminID, map[string]string{"role": "Student"}, "admin-1"); w.Code != http.StatusConflict {
		t.Errorf("editing an admin: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	if w := ts.do(http.MethodPatch, "/users/"+id, map[string]string{"role": "Technician"}, "stu-1"); w.Code != http.StatusForbidden {
		t.Errorf("student edit: expected 403, got %d: %s", w.Code, w.Body.String())
	}
}
