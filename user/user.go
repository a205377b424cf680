// Package user
package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent    Role = "Student"
	RoleTechnician Role = "Technician"
	RoleAdmin      Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// Account statuses. Suspended accounts keep their ledger but cannot ride.
const (
	StatusActive    = "Active"
	StatusSuspended = "Suspended"
)

type User struct {
	ID uuid.UUID
	// Subject is the identity-provider subject claim ("auth0|...") this
	// account is linked to.
	Subject  string
	FullName sql.NullString `db:"full_name"`
	Email    sql.NullString
	Role     Role
	Status   string

	// BalanceCents is the rider's account balance in cents. It is mutated
	// only by payment charge/refund transitions, never edited directly.
	BalanceCents int64 `db:"balance_cents"`

	// AssignedBikeLabel links a student to their personal campus bike.
	AssignedBikeLabel *string `db:"assigned_bike_label"`

	CreatedAt time.Time `db:"created_at"`
}
