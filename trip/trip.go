// Package trip
package trip

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Trip is one ride interval: the time a rider held exclusive use of a bike.
type Trip struct {
	ID        uuid.UUID
	BikeID    uuid.UUID `db:"bike_id"`
	UserID    uuid.UUID `db:"user_id"`
	StartedAt time.Time `db:"started_at"`
	// EndedAt is null while the trip is in progress. At most one open trip
	// exists per bike.
	EndedAt  sql.NullTime    `db:"ended_at"`
	Distance sql.NullFloat64 `db:"distance"`
}

func (t Trip) Open() bool {
	return !t.EndedAt.Valid
}

// Duration returns the elapsed ride time, using now for open trips.
func (t Trip) Duration(now time.Time) time.Duration {
	end := now
	if t.EndedAt.Valid {
		end = t.EndedAt.Time
	}
	return end.Sub(t.StartedAt)
}

// BilledMinutes converts a ride duration into whole billed minutes. Partial
// minutes round up and every ride bills at least one minute, so a sub-minute
// unlock/lock still produces a charge.
func BilledMinutes(d time.Duration) int {
	if d <= time.Minute {
		return 1
	}
	mins := int(d / time.Minute)
	if d%time.Minute > 0 {
		mins++
	}
	return mins
}
