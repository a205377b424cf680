package lifecycle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fptsbe/fleetengine-backend/alert"
	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/bikemodel"
	"github.com/fptsbe/fleetengine-backend/maintenance"
	"github.com/fptsbe/fleetengine-backend/user"
)

// autoLockNote is the ticket text for bikes locked by the anti-theft system.
const autoLockNote = "[AUTO-LOCK] Locked by Anti-Theft system. Needs inspection."

// movementAlertText is the alert body for a simulated unauthorized movement.
const movementAlertText = "Unauthorized movement detected!"

// raiseMaintenance is the single primitive that locks a bike into
// Maintenance. It closes any open trip first (billing it like a normal lock),
// creates the ticket and the optional alert, and always clears the anti-theft
// flag. Both rider issue reports and anti-theft auto-locks funnel through it.
func raiseMaintenance(ctx context.Context, tx *sqlx.Tx, b bike.Bike, description string, withAlert bool) (maintenance.Task, *alert.Alert, error) {
	if b.Status == bike.StatusInUse {
		if _, err := closeTripAndBill(ctx, tx, b); err != nil {
			return maintenance.Task{}, nil, err
		}
	}

	var t maintenance.Task
	err := tx.GetContext(ctx, &t, createTask, uuid.New(), b.ID, description)
	if err != nil {
		return maintenance.Task{}, nil, err
	}

	var a *alert.Alert
	if withAlert {
		a = &alert.Alert{}
		err = tx.GetContext(ctx, a, createAlert, uuid.New(), b.ID, alert.TypeAntiTheft, movementAlertText)
		if err != nil {
			return maintenance.Task{}, nil, err
		}
	}

	_, err = tx.ExecContext(ctx, bikeToMaintenance, b.ID)
	if err != nil {
		return maintenance.Task{}, nil, err
	}

	return t, a, nil
}

const createTask = `
INSERT INTO maintenance_tasks (id, bike_id, technician_id, description, date, status)
VALUES ($1, $2, NULL, $3, now(), 'Pending')
RETURNING *
`

const createAlert = `
INSERT INTO alerts (id, bike_id, alert_type, timestamp, description, resolved)
VALUES ($1, $2, $3, now(), $4, false)
RETURNING *
`

const bikeToMaintenance = `
UPDATE bikes
SET status = 'Maintenance', current_user_id = NULL, current_trip_id = NULL, anti_theft_active = false
WHERE id = $1
`

// ReportIssue files a rider fault report and takes the bike out of service.
func (c *Controller) ReportIssue(ctx context.Context, actor user.User, label, issueType, detail string) (t maintenance.Task, err error) {
	ctx, end := span(ctx, "lifecycle.ReportIssue", label)
	defer end()
	defer func() { c.observe(ctx, ActionReportIssue, err) }()

	if err = Authorize(actor.Role, ActionReportIssue); err != nil {
		return maintenance.Task{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return maintenance.Task{}, err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return maintenance.Task{}, err
	}
	if err = checkReportIssue(b, actor.ID); err != nil {
		return maintenance.Task{}, err
	}

	t, _, err = raiseMaintenance(ctx, tx, b, "["+issueType+"] "+detail, false)
	if err != nil {
		return maintenance.Task{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionReportIssue, "bike", b.Label, t.Description); err != nil {
		return maintenance.Task{}, err
	}

	return t, tx.Commit()
}

// ToggleAntiTheft flips the anti-theft flag on an Active bike whose model and
// product tier both expose the feature. It returns the new flag state.
func (c *Controller) ToggleAntiTheft(ctx context.Context, actor user.User, label string) (on bool, err error) {
	ctx, end := span(ctx, "lifecycle.ToggleAntiTheft", label)
	defer end()
	defer func() { c.observe(ctx, ActionToggleAntiTheft, err) }()

	if err = Authorize(actor.Role, ActionToggleAntiTheft); err != nil {
		return false, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return false, err
	}
	if err = checkToggleAntiTheft(b); err != nil {
		return false, err
	}

	ok, err := c.featureEnabled(ctx, b.ModelID, bikemodel.FeatureAntiTheft)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, reject(ActionToggleAntiTheft, "anti-theft is not available for model %s", b.ModelID)
	}

	on = !b.AntiTheftActive
	_, err = tx.ExecContext(ctx, setAntiTheft, b.ID, on)
	if err != nil {
		return false, err
	}
	detail := "anti-theft off"
	if on {
		detail = "anti-theft on"
	}
	if err = c.audit(ctx, tx, actor, ActionToggleAntiTheft, "bike", b.Label, detail); err != nil {
		return false, err
	}

	return on, tx.Commit()
}

const setAntiTheft = `UPDATE bikes SET anti_theft_active = $2 WHERE id = $1`

// MovementResult is the pair of records a simulated unauthorized movement
// leaves behind.
type MovementResult struct {
	Alert alert.Alert
	Task  maintenance.Task
}

// SimulateMovement stands in for the IoT lock reporting movement while armed:
// one unresolved alert, one pending ticket, bike locked into Maintenance.
func (c *Controller) SimulateMovement(ctx context.Context, actor user.User, label string) (res MovementResult, err error) {
	ctx, end := span(ctx, "lifecycle.SimulateMovement", label)
	defer end()
	defer func() { c.observe(ctx, ActionSimulateMovement, err) }()

	if err = Authorize(actor.Role, ActionSimulateMovement); err != nil {
		return MovementResult{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return MovementResult{}, err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return MovementResult{}, err
	}
	if err = checkSimulateMovement(b); err != nil {
		return MovementResult{}, err
	}

	t, a, err := raiseMaintenance(ctx, tx, b, autoLockNote, true)
	if err != nil {
		return MovementResult{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionSimulateMovement, "bike", b.Label, "alert "+a.ID.String()); err != nil {
		return MovementResult{}, err
	}

	res = MovementResult{Alert: *a, Task: t}
	return res, tx.Commit()
}

// ResolveAlert closes an alert and forces its bike back to Active. Battery is
// left as-is; only completed maintenance recharges it.
func (c *Controller) ResolveAlert(ctx context.Context, actor user.User, alertID uuid.UUID) (a alert.Alert, err error) {
	ctx, end := span(ctx, "lifecycle.ResolveAlert", alertID.String())
	defer end()
	defer func() { c.observe(ctx, ActionResolveAlert, err) }()

	if err = Authorize(actor.Role, ActionResolveAlert); err != nil {
		return alert.Alert{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return alert.Alert{}, err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &a, lockAlert, alertID)
	if errors.Is(err, sql.ErrNoRows) {
		return alert.Alert{}, alert.ErrNotFound
	}
	if err != nil {
		return alert.Alert{}, err
	}
	if a.Resolved {
		return alert.Alert{}, reject(ActionResolveAlert, "alert %s is already resolved", a.ID)
	}

	err = tx.GetContext(ctx, &a, resolveAlert, a.ID)
	if err != nil {
		return alert.Alert{}, err
	}
	_, err = tx.ExecContext(ctx, bikeToActiveByID, a.BikeID)
	if err != nil {
		return alert.Alert{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionResolveAlert, "alert", a.ID.String(), "bike set active"); err != nil {
		return alert.Alert{}, err
	}

	return a, tx.Commit()
}

const lockAlert = `SELECT * FROM alerts WHERE id = $1 FOR UPDATE`
const resolveAlert = `UPDATE alerts SET resolved = true WHERE id = $1 RETURNING *`

const bikeToActiveByID = `
UPDATE bikes
SET status = 'Active', current_user_id = NULL, current_trip_id = NULL, anti_theft_active = false
WHERE id = $1
`

// AssignTask puts a technician on a ticket, promoting Pending tickets to In
// Progress on the way.
func (c *Controller) AssignTask(ctx context.Context, actor user.User, taskID, technicianID uuid.UUID) (t maintenance.Task, err error) {
	ctx, end := span(ctx, "lifecycle.AssignTask", taskID.String())
	defer end()
	defer func() { c.observe(ctx, ActionAssignTask, err) }()

	if err = Authorize(actor.Role, ActionAssignTask); err != nil {
		return maintenance.Task{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return maintenance.Task{}, err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &t, lockTask, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return maintenance.Task{}, maintenance.ErrNotFound
	}
	if err != nil {
		return maintenance.Task{}, err
	}
	if t.Status == maintenance.StatusCompleted {
		return maintenance.Task{}, reject(ActionAssignTask, "task %s is already completed", t.ID)
	}

	status := t.Status
	if status == maintenance.StatusPending {
		status = maintenance.StatusInProgress
	}
	err = tx.GetContext(ctx, &t, assignTask, technicianID, status, t.ID)
	if err != nil {
		return maintenance.Task{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionAssignTask, "maintenance_task", t.ID.String(), "technician "+technicianID.String()); err != nil {
		return maintenance.Task{}, err
	}

	return t, tx.Commit()
}

const lockTask = `SELECT * FROM maintenance_tasks WHERE id = $1 FOR UPDATE`
const assignTask = `UPDATE maintenance_tasks SET technician_id = $1, status = $2 WHERE id = $3 RETURNING *`

// CompleteTask closes a ticket and returns the bike to service with a full
// battery. The recharge is deliberate policy: completed maintenance is the
// only thing that restores battery.
func (c *Controller) CompleteTask(ctx context.Context, actor user.User, taskID uuid.UUID) (t maintenance.Task, err error) {
	ctx, end := span(ctx, "lifecycle.CompleteTask", taskID.String())
	defer end()
	defer func() { c.observe(ctx, ActionCompleteTask, err) }()

	if err = Authorize(actor.Role, ActionCompleteTask); err != nil {
		return maintenance.Task{}, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return maintenance.Task{}, err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &t, lockTask, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return maintenance.Task{}, maintenance.ErrNotFound
	}
	if err != nil {
		return maintenance.Task{}, err
	}
	if t.Status == maintenance.StatusCompleted {
		return maintenance.Task{}, reject(ActionCompleteTask, "task %s is already completed", t.ID)
	}

	err = tx.GetContext(ctx, &t, completeTask, t.ID)
	if err != nil {
		return maintenance.Task{}, err
	}
	_, err = tx.ExecContext(ctx, bikeToActiveFullBattery, t.BikeID)
	if err != nil {
		return maintenance.Task{}, err
	}
	if err = c.audit(ctx, tx, actor, ActionCompleteTask, "maintenance_task", t.ID.String(), "bike recharged and set active"); err != nil {
		return maintenance.Task{}, err
	}

	return t, tx.Commit()
}

const completeTask = `UPDATE maintenance_tasks SET status = 'Completed' WHERE id = $1 RETURNING *`

const bikeToActiveFullBattery = `
UPDATE bikes
SET status = 'Active', battery_level = 100, current_user_id = NULL, current_trip_id = NULL, anti_theft_active = false
WHERE id = $1
`

// RemoteLock takes a bike out of service from the admin console. Bikes with a
// rider on them cannot be remote-locked.
func (c *Controller) RemoteLock(ctx context.Context, actor user.User, label string) (err error) {
	ctx, end := span(ctx, "lifecycle.RemoteLock", label)
	defer end()
	defer func() { c.observe(ctx, ActionRemoteLock, err) }()

	if err = Authorize(actor.Role, ActionRemoteLock); err != nil {
		return err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return err
	}
	if err = checkRemoteLock(b); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, bikeToMaintenance, b.ID)
	if err != nil {
		return err
	}
	if err = c.audit(ctx, tx, actor, ActionRemoteLock, "bike", b.Label, "remote locked"); err != nil {
		return err
	}

	return tx.Commit()
}

// Reactivate returns a Maintenance bike to service with a full battery
// without going through a ticket.
func (c *Controller) Reactivate(ctx context.Context, actor user.User, label string) (err error) {
	ctx, end := span(ctx, "lifecycle.Reactivate", label)
	defer end()
	defer func() { c.observe(ctx, ActionReactivate, err) }()

	if err = Authorize(actor.Role, ActionReactivate); err != nil {
		return err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, err := lockBike(ctx, tx, label)
	if err != nil {
		return err
	}
	if err = checkReactivate(b); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, bikeToActiveFullBattery, b.ID)
	if err != nil {
		return err
	}
	if err = c.audit(ctx, tx, actor, ActionReactivate, "bike", b.Label, "reactivated"); err != nil {
		return err
	}

	return tx.Commit()
}
