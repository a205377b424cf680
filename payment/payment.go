// Package payment
package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusPaid     Status = "Paid"
	StatusRefunded Status = "Refunded"
)

// CanTransition reports whether a payment status change is legal. The only
// allowed flow is Pending -> Paid -> Refunded; no skipping, no reversing.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid
	case StatusPaid:
		return to == StatusRefunded
	}
	return false
}

// RatePerMinuteCents is the flat ride rate. It is deliberately not
// model-dependent.
const RatePerMinuteCents int64 = 5

// Cost returns the amount owed for a ride of the given billed minutes.
func Cost(billedMinutes int) int64 {
	return int64(billedMinutes) * RatePerMinuteCents
}

// Payment is a monetary obligation derived from a completed trip. Amounts are
// integer cents; the amount is immutable after creation.
type Payment struct {
	ID          uuid.UUID
	UserID      uuid.UUID `db:"user_id"`
	TripID      uuid.UUID `db:"trip_id"`
	AmountCents int64     `db:"amount_cents"`
	Currency    string
	Status      Status
	CreatedAt   time.Time `db:"created_at"`
}
