package acceptance

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fptsbe/fleetengine-backend/alert"
	"github.com/fptsbe/fleetengine-backend/announcement"
	"github.com/fptsbe/fleetengine-backend/api"
	"github.com/fptsbe/fleetengine-backend/audit"
	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/bikemodel"
	"github.com/fptsbe/fleetengine-backend/geofence"
	"github.com/fptsbe/fleetengine-backend/internal/auth0"
	"github.com/fptsbe/fleetengine-backend/internal/o11y"
	"github.com/fptsbe/fleetengine-backend/lifecycle"
	"github.com/fptsbe/fleetengine-backend/maintenance"
	"github.com/fptsbe/fleetengine-backend/monitor"
	"github.com/fptsbe/fleetengine-backend/payment"
	"github.com/fptsbe/fleetengine-backend/trip"
	"github.com/fptsbe/fleetengine-backend/user"
)

// TestServer runs the real API (header auth, no Auth0) against a real
// Postgres. Tests are skipped when DATABASE_URL is unset.
type TestServer struct {
	DB     *sqlx.DB
	Router *gin.Engine
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServer(t, nil)
}

// NewTestServerWithIDP additionally wires an identity provider so the
// first-login profile sync runs.
func NewTestServerWithIDP(t *testing.T, idp auth0.Client) *TestServer {
	t.Helper()
	return newTestServer(t, idp)
}

func newTestServer(t *testing.T, idp auth0.Client) *TestServer {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping acceptance tests")
	}

	gin.SetMode(gin.TestMode)

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	cleanupTestData(t, db)

	repos := api.Repos{
		Bikes:         bike.NewRepository(db),
		Models:        bikemodel.NewRepository(db),
		Users:         user.NewRepository(db),
		Trips:         trip.NewRepository(db),
		Payments:      payment.NewRepository(db),
		Alerts:        alert.NewRepository(db),
		Tasks:         maintenance.NewRepository(db),
		Geofences:     geofence.NewRepository(db),
		Announcements: announcement.NewRepository(db),
		Audit:         audit.NewRepository(db),
	}

	obs := &o11y.Observability{
		Logger:   slog.Default(),
		Registry: prometheus.NewRegistry(),
	}

	gate := bikemodel.NewGate(bikemodel.TierPro)
	ctrl := lifecycle.NewController(db, repos.Models, repos.Payments, gate, obs.Logger)
	mon := monitor.New(repos.Bikes, obs.Logger, monitor.DefaultInterval)

	a, err := api.New(repos, ctrl, mon, gate, idp, obs, api.Config{})
	if err != nil {
		t.Fatalf("failed to build api: %v", err)
	}

	return &TestServer{DB: db, Router: a.Router()}
}

func (ts *TestServer) Close() {
	ts.DB.Close()
}

func cleanupTestData(t *testing.T, db *sqlx.DB) {
	t.Helper()

	// Delete in order of dependencies. bike_models are static seed data.
	for _, table := range []string{"audit_logs", "payments", "alerts", "maintenance_tasks", "trips", "announcements", "bikes", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("warning: failed to clean %s: %v", table, err)
		}
	}
}

func (ts *TestServer) do(method, path string, body any, subject string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("X-User-ID", subject)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

// GETWithToken carries the access token the profile sync forwards to the
// identity provider.
func (ts *TestServer) GETWithToken(path, subject, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-User-ID", subject)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) GET(path, subject string) *httptest.ResponseRecorder {
	return ts.do(http.MethodGet, path, nil, subject)
}

func (ts *TestServer) POST(path string, body any, subject string) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, path, body, subject)
}

func (ts *TestServer) DELETE(path, subject string) *httptest.ResponseRecorder {
	return ts.do(http.MethodDelete, path, nil, subject)
}

// CreateTestUser inserts an account with a given role, bypassing the
// first-login student default.
func (ts *TestServer) CreateTestUser(t *testing.T, subject string, role user.Role) string {
	t.Helper()
	var id string
	err := ts.DB.Get(&id, `
		INSERT INTO users (id, subject, role, status, balance_cents, created_at)
		VALUES (gen_random_uuid(), $1, $2, 'Active', 0, now())
		RETURNING id
	`, subject, role)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

func (ts *TestServer) SetBalance(t *testing.T, subject string, cents int64) {
	t.Helper()
	if _, err := ts.DB.Exec(`UPDATE users SET balance_cents = $1 WHERE subject = $2`, cents, subject); err != nil {
		t.Fatalf("failed to set balance: %v", err)
	}
}

func (ts *TestServer) Balance(t *testing.T, subject string) int64 {
	t.Helper()
	var cents int64
	if err := ts.DB.Get(&cents, `SELECT balance_cents FROM users WHERE subject = $1`, subject); err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	return cents
}

func (ts *TestServer) CreateTestBike(t *testing.T, label, modelID string) string {
	t.Helper()
	var id string
	err := ts.DB.Get(&id, `
		INSERT INTO bikes (id, label, model_id, status, battery_level, last_location, location, anti_theft_active)
		VALUES (gen_random_uuid(), $1, $2, 'Active', 100, 'Library', point(0, 0), false)
		RETURNING id
	`, label, modelID)
	if err != nil {
		t.Fatalf("failed to create test bike: %v", err)
	}
	return id
}

func (ts *TestServer) BikeState(t *testing.T, label string) bike.Bike {
	t.Helper()
	var b bike.Bike
	if err := ts.DB.Get(&b, `SELECT * FROM bikes WHERE label = $1`, label); err != nil {
		t.Fatalf("failed to read bike %s: %v", label, err)
	}
	return b
}

// BackdateOpenTrip shifts the open trip's start so the ride bills a known
// number of minutes regardless of test wall time.
func (ts *TestServer) BackdateOpenTrip(t *testing.T, bikeID string, seconds int) {
	t.Helper()
	q := fmt.Sprintf(`UPDATE trips SET started_at = now() - interval '%d seconds' WHERE bike_id = $1 AND ended_at IS NULL`, seconds)
	if _, err := ts.DB.Exec(q, bikeID); err != nil {
		t.Fatalf("failed to backdate trip: %v", err)
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}
