package trip

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound   = errors.New("trip not found")
	ErrNoOpenTrip = errors.New("no trip in progress")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetTrip(ctx context.Context, id uuid.UUID) (Trip, error) {
	var t Trip
	err := r.db.GetContext(ctx, &t, getTrip, id)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

const getTrip = `SELECT * FROM trips WHERE id = $1`

// GetTrips returns every completed trip, newest first, for the fleet report.
func (r *Repository) GetTrips(ctx context.Context) ([]Trip, error) {
	var trips []Trip
	err := r.db.SelectContext(ctx, &trips, getTrips)
	return trips, err
}

const getTrips = `SELECT * FROM trips ORDER BY started_at DESC`

func (r *Repository) GetTripsByUser(ctx context.Context, userID uuid.UUID) ([]Trip, error) {
	var trips []Trip
	err := r.db.SelectContext(ctx, &trips, getTripsByUser, userID)
	return trips, err
}

const getTripsByUser = `SELECT * FROM trips WHERE user_id = $1 ORDER BY started_at DESC`

// OpenTripForBike fetches the single in-progress trip for a bike, if any.
func (r *Repository) OpenTripForBike(ctx context.Context, bikeID uuid.UUID) (Trip, error) {
	var t Trip
	err := r.db.GetContext(ctx, &t, openTripForBike, bikeID)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNoOpenTrip
	}
	return t, err
}

const openTripForBike = `SELECT * FROM trips WHERE bike_id = $1 AND ended_at IS NULL`
