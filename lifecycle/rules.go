package lifecycle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fptsbe/fleetengine-backend/bike"
	"github.com/fptsbe/fleetengine-backend/user"
)

// Action is a lifecycle transition an actor can request.
type Action string

const (
	ActionUnlock           Action = "unlock"
	ActionLock             Action = "lock"
	ActionReportIssue      Action = "report_issue"
	ActionToggleAntiTheft  Action = "toggle_anti_theft"
	ActionSimulateMovement Action = "simulate_movement"
	ActionResolveAlert     Action = "resolve_alert"
	ActionAssignTask       Action = "assign_task"
	ActionCompleteTask     Action = "complete_task"
	ActionRemoteLock       Action = "remote_lock"
	ActionReactivate       Action = "reactivate"
	ActionCharge           Action = "charge"
	ActionRefund           Action = "refund"
)

// permissions is the single role table consulted at controller entry. Handlers
// never branch on roles themselves.
var permissions = map[Action]map[user.Role]bool{
	ActionUnlock:           {user.RoleStudent: true},
	ActionLock:             {user.RoleStudent: true},
	ActionReportIssue:      {user.RoleStudent: true, user.RoleTechnician: true},
	ActionToggleAntiTheft:  {user.RoleStudent: true},
	ActionSimulateMovement: {user.RoleStudent: true, user.RoleAdmin: true},
	ActionResolveAlert:     {user.RoleTechnician: true, user.RoleAdmin: true},
	ActionAssignTask:       {user.RoleAdmin: true},
	ActionCompleteTask:     {user.RoleTechnician: true},
	ActionRemoteLock:       {user.RoleAdmin: true},
	ActionReactivate:       {user.RoleAdmin: true},
	ActionCharge:           {user.RoleStudent: true, user.RoleAdmin: true},
	ActionRefund:           {user.RoleAdmin: true},
}

// AuthzError is returned when an actor's role does not permit an action.
type AuthzError struct {
	Role   user.Role
	Action Action
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("role %s may not perform %s", e.Role, e.Action)
}

// Authorize checks the permission table. It is the only role check in the
// transition paths.
func Authorize(role user.Role, action Action) error {
	if !permissions[action][role] {
		return &AuthzError{Role: role, Action: action}
	}
	return nil
}

// RejectionError is a precondition violation: the action was refused before
// any write happened. The message is intended for the invoking actor.
type RejectionError struct {
	Action Action
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Action, e.Reason)
}

func reject(action Action, format string, args ...any) error {
	return &RejectionError{Action: action, Reason: fmt.Sprintf(format, args...)}
}

// The check functions below validate a transition against a bike snapshot.
// They are pure so the whole precondition surface is testable without a
// database; the controller calls them with the row already locked.

func checkUnlock(b bike.Bike) error {
	if b.Status != bike.StatusActive {
		return reject(ActionUnlock, "bike %s is %s", b.Label, b.Status)
	}
	return nil
}

func checkLock(b bike.Bike, rider uuid.UUID) error {
	if b.Status != bike.StatusInUse {
		return reject(ActionLock, "bike %s is %s, not in use", b.Label, b.Status)
	}
	if !b.InUseBy(rider) {
		return reject(ActionLock, "bike %s is ridden by someone else", b.Label)
	}
	return nil
}

func checkReportIssue(b bike.Bike, reporter uuid.UUID) error {
	switch b.Status {
	case bike.StatusActive:
		return nil
	case bike.StatusInUse:
		if b.InUseBy(reporter) {
			return nil
		}
		return reject(ActionReportIssue, "bike %s is ridden by someone else", b.Label)
	}
	return reject(ActionReportIssue, "bike %s is already in maintenance", b.Label)
}

func checkToggleAntiTheft(b bike.Bike) error {
	if b.Status != bike.StatusActive {
		return reject(ActionToggleAntiTheft, "bike %s is %s", b.Label, b.Status)
	}
	return nil
}

func checkSimulateMovement(b bike.Bike) error {
	if !b.AntiTheftActive {
		return reject(ActionSimulateMovement, "anti-theft is off for bike %s", b.Label)
	}
	return nil
}

func checkRemoteLock(b bike.Bike) error {
	if b.Status == bike.StatusInUse {
		return reject(ActionRemoteLock, "bike %s is in use", b.Label)
	}
	return nil
}

func checkReactivate(b bike.Bike) error {
	if b.Status != bike.StatusMaintenance {
		return reject(ActionReactivate, "bike %s is %s, not in maintenance", b.Label, b.Status)
	}
	return nil
}
