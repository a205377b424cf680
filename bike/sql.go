package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("bike not found")
	ErrInUse         = errors.New("bike is currently in use")
	ErrLabelTaken    = errors.New("bike label already exists")
	ErrInvalidStatus = errors.New("invalid bike status")
	// ErrHasTrips is returned when deleting a bike with trip history. Trips
	// and payments are ledger records and must survive the bike.
	ErrHasTrips = errors.New("bike has trip history")
	// ErrStatusManaged is returned when an admin edit tries to move a bike
	// into or out of In Use; rides own that transition.
	ErrStatusManaged = errors.New("in-use status is managed by rides")
	// ErrAntiTheftUnavailable is returned when activating anti-theft on a bike
	// that is not Active.
	ErrAntiTheftUnavailable = errors.New("anti-theft requires an active bike")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBikes(ctx context.Context) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, getBikes)
	return bikes, err
}

const getBikes = `SELECT * FROM bikes ORDER BY label`

func (r *Repository) GetBike(ctx context.Context, label string) (Bike, error) {
	var b Bike

	err := r.db.GetContext(ctx, &b, getBike, label)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}

	return b, err
}

const getBike = `SELECT * FROM bikes WHERE label = $1`

func (r *Repository) GetBikeByID(ctx context.Context, id uuid.UUID) (Bike, error) {
	var b Bike
	err := r.db.GetContext(ctx, &b, getBikeByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

const getBikeByID = `SELECT * FROM bikes WHERE id = $1`

// Create registers a new bike. New bikes always start Active with a full
// battery and anti-theft off.
func (r *Repository) Create(ctx context.Context, label, modelID, location string) (Bike, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Bike{}, err
	}
	defer tx.Rollback()

	var taken bool
	err = tx.GetContext(ctx, &taken, checkLabel, label)
	if err != nil {
		return Bike{}, err
	}
	if taken {
		return Bike{}, ErrLabelTaken
	}

	var b Bike
	err = tx.GetContext(ctx, &b, createBike, uuid.New(), label, modelID, location)
	if err != nil {
		return Bike{}, err
	}

	return b, tx.Commit()
}

const checkLabel = `SELECT EXISTS (SELECT 1 FROM bikes WHERE lower(label) = lower($1))`

const createBike = `
INSERT INTO bikes (id, label, model_id, status, battery_level, last_location, location, anti_theft_active)
VALUES ($1, $2, $3, 'Active', 100, $4, point(0, 0), false)
RETURNING *
`

// Delete removes a bike. A bike that is In Use cannot be deleted, and neither
// can one that has been ridden: its trips and their payments stay on the
// books.
func (r *Repository) Delete(ctx context.Context, label string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var b Bike
	err = tx.GetContext(ctx, &b, deleteBike_lock, label)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if b.Status == StatusInUse {
		return ErrInUse
	}

	var ridden bool
	err = tx.GetContext(ctx, &ridden, checkTrips, b.ID)
	if err != nil {
		return err
	}
	if ridden {
		return ErrHasTrips
	}

	_, err = tx.ExecContext(ctx, deleteBike, label)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const deleteBike_lock = `SELECT * FROM bikes WHERE label = $1 FOR UPDATE`
const checkTrips = `SELECT EXISTS (SELECT 1 FROM trips WHERE bike_id = $1)`
const deleteBike = `DELETE FROM bikes WHERE label = $1`

// StatusUpdate carries the field updates that accompany a status change.
// Nil pointers leave the column untouched.
type StatusUpdate struct {
	BatteryLevel *int
	LastLocation *string
	AntiTheft    *bool
}

// SetStatus applies an admin status change plus accompanying field updates as
// one atomic write. It validates the status enum, rejects anti-theft
// activation on a bike that is not Active, and refuses to move a bike into or
// out of In Use: that pairs with trip writes and belongs to the lifecycle
// controller.
func (r *Repository) SetStatus(ctx context.Context, label string, status Status, upd StatusUpdate) (Bike, error) {
	if !status.Valid() {
		return Bike{}, ErrInvalidStatus
	}
	if status == StatusInUse {
		return Bike{}, ErrStatusManaged
	}
	if upd.AntiTheft != nil && *upd.AntiTheft && status != StatusActive {
		return Bike{}, ErrAntiTheftUnavailable
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Bike{}, err
	}
	defer tx.Rollback()

	var b Bike
	err = tx.GetContext(ctx, &b, setStatus_lock, label)
	if errors.Is(err, sql.ErrNoRows) {
		return Bike{}, ErrNotFound
	}
	if err != nil {
		return Bike{}, err
	}
	if b.Status == StatusInUse {
		return Bike{}, ErrStatusManaged
	}

	battery := b.BatteryLevel
	if upd.BatteryLevel != nil {
		battery = *upd.BatteryLevel
	}
	location := b.LastLocation
	if upd.LastLocation != nil {
		location = *upd.LastLocation
	}
	antiTheft := b.AntiTheftActive
	if upd.AntiTheft != nil {
		antiTheft = *upd.AntiTheft
	}
	if status != StatusActive {
		antiTheft = false
	}

	err = tx.GetContext(ctx, &b, setStatus, label, status, battery, location, antiTheft)
	if err != nil {
		return Bike{}, err
	}

	return b, tx.Commit()
}

const setStatus_lock = `SELECT * FROM bikes WHERE label = $1 FOR UPDATE`

const setStatus = `
UPDATE bikes
SET status = $2, battery_level = $3, last_location = $4, anti_theft_active = $5
WHERE label = $1
RETURNING *
`
