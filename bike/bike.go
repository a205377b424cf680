// Package bike
package bike

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Status is the lifecycle state of a bike. Transitions between statuses are
// owned by the lifecycle package; everything else treats them as read-only.
type Status string

const (
	StatusActive      Status = "Active"
	StatusInUse       Status = "In Use"
	StatusMaintenance Status = "Maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInUse, StatusMaintenance:
		return true
	}
	return false
}

// Bike represents a fleet bike.
type Bike struct {
	// ID is an internal identifier for a bike
	ID uuid.UUID
	// Label is a physical label which is on the bike. It should be scannable (e.g. "SBE-001")
	// in QR Code or Code-128 format.
	Label string

	ModelID string `db:"model_id"`

	Status Status

	// BatteryLevel is a percentage, 0-100.
	BatteryLevel int `db:"battery_level"`

	// LastLocation is a free-text campus location ("Library", "Dorm A").
	LastLocation string `db:"last_location"`
	Location     pgtype.Point

	AntiTheftActive bool `db:"anti_theft_active"`

	// CurrentUserID and CurrentTripID are set iff Status is StatusInUse.
	CurrentUserID *uuid.UUID `db:"current_user_id"`
	CurrentTripID *uuid.UUID `db:"current_trip_id"`
}

// InUseBy reports whether the bike is currently ridden by the given user.
func (b Bike) InUseBy(userID uuid.UUID) bool {
	return b.Status == StatusInUse && b.CurrentUserID != nil && *b.CurrentUserID == userID
}
