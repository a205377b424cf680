package alert

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("alert not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAlert(ctx context.Context, id uuid.UUID) (Alert, error) {
	var a Alert
	err := r.db.GetContext(ctx, &a, getAlert, id)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

const getAlert = `SELECT * FROM alerts WHERE id = $1`

func (r *Repository) GetAlerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	err := r.db.SelectContext(ctx, &alerts, getAlerts)
	return alerts, err
}

const getAlerts = `SELECT * FROM alerts ORDER BY timestamp DESC`

// GetAlertsForBike returns alerts for one bike, newest first. Students see
// only the alerts of their assigned bike.
func (r *Repository) GetAlertsForBike(ctx context.Context, bikeID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := r.db.SelectContext(ctx, &alerts, getAlertsForBike, bikeID)
	return alerts, err
}

const getAlertsForBike = `SELECT * FROM alerts WHERE bike_id = $1 ORDER BY timestamp DESC`
