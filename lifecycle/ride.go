package lifecycle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/bikemodel"
	"github.com/fptsbe/fleetengine-backend/payment"
	"github.com/fptsbe/fleetengine-backend/trip"
	"github.com/fptsbe/fleetengine-backend/user"
)

// Unlock starts a ride: it opens a trip and moves the bike to In Use.
func (c *Controller) Unlock(ctx context.Context, actor user.User, label string) (t trip.Trip, err error) {
	ctx, end := span(ctx, "lifecycle.Unlock", label)
	defer end()
	defer func() { c.observe(ctx, ActionUnlock, err) }()

	if err = Authorize(actor.Role, ActionUnlock); err != nil {
		return trip.Trip{}, err
	}
	if actor.AssignedBikeLabel != nil && *actor.AssignedBikeLabel != label {
		return trip.Trip{}, reject(ActionUnlock, "bike %s is not linked to this rider", label)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return trip.Trip{}, err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return trip.Trip{}, err
	}
	if err = checkUnlock(b); err != nil {
		return trip.Trip{}, err
	}

	ok, err := c.featureEnabled(ctx, b.ModelID, bikemodel.FeatureSmartLock)
	if err != nil {
		return trip.Trip{}, err
	}
	if !ok {
		return trip.Trip{}, reject(ActionUnlock, "model %s does not support app unlock", b.ModelID)
	}

	err = tx.GetContext(ctx, &t, startTrip, uuid.New(), b.ID, actor.ID)
	if err != nil {
		return trip.Trip{}, err
	}
	_, err = tx.ExecContext(ctx, bikeToInUse, b.ID, actor.ID, t.ID)
	if err != nil {
		return trip.Trip{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionUnlock, "bike", b.Label, "trip "+t.ID.String()+" started"); err != nil {
		return trip.Trip{}, err
	}

	return t, tx.Commit()
}

const startTrip = `
INSERT INTO trips (id, bike_id, user_id, started_at)
VALUES ($1, $2, $3, now())
RETURNING *
`

const bikeToInUse = `
UPDATE bikes
SET status = 'In Use', current_user_id = $2, current_trip_id = $3, anti_theft_active = false
WHERE id = $1
`

// LockResult is what a completed ride produced.
type LockResult struct {
	Trip          trip.Trip
	Payment       payment.Payment
	BilledMinutes int
}

// Lock ends a ride: it closes the open trip, creates the Pending payment for
// it, and returns the bike to Active with its rider references cleared.
func (c *Controller) Lock(ctx context.Context, actor user.User, label string) (res LockResult, err error) {
	ctx, end := span(ctx, "lifecycle.Lock", label)
	defer end()
	defer func() { c.observe(ctx, ActionLock, err) }()

	if err = Authorize(actor.Role, ActionLock); err != nil {
		return LockResult{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return LockResult{}, err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return LockResult{}, err
	}
	if err = checkLock(b, actor.ID); err != nil {
		return LockResult{}, err
	}

	res, err = closeTripAndBill(ctx, tx, b)
	if err != nil {
		return LockResult{}, err
	}

	_, err = tx.ExecContext(ctx, bikeToActive, b.ID)
	if err != nil {
		return LockResult{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionLock, "bike", b.Label, "payment "+res.Payment.ID.String()+" created"); err != nil {
		return LockResult{}, err
	}

	return res, tx.Commit()
}

const bikeToActive = `
UPDATE bikes
SET status = 'Active', current_user_id = NULL, current_trip_id = NULL, anti_theft_active = false
WHERE id = $1
`

// closeTripAndBill ends the open trip for a locked bike row and creates the
// payment derived from it, all on the caller's transaction. A bike that is In
// Use without an open trip is corrupt state and surfaces as an error.
func closeTripAndBill(ctx context.Context, tx *sqlx.Tx, b bike.Bike) (LockResult, error) {
	var t trip.Trip
	err := tx.GetContext(ctx, &t, closeOpenTrip, b.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return LockResult{}, errors.New("bike " + b.Label + " has no open trip to close")
	}
	if err != nil {
		return LockResult{}, err
	}

	minutes := trip.BilledMinutes(t.EndedAt.Time.Sub(t.StartedAt))

	var p payment.Payment
	err = tx.GetContext(ctx, &p, createPayment, uuid.New(), t.UserID, t.ID, payment.Cost(minutes))
	if err != nil {
		return LockResult{}, err
	}

	return LockResult{Trip: t, Payment: p, BilledMinutes: minutes}, nil
}

const closeOpenTrip = `
UPDATE trips
SET ended_at = now()
WHERE bike_id = $1 AND ended_at IS NULL
RETURNING *
`

const createPayment = `
INSERT INTO payments (id, user_id, trip_id, amount_cents, currency, status, created_at)
VALUES ($1, $2, $3, $4, 'USD', 'Pending', now())
RETURNING *
`
