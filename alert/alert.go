// Package alert
package alert

import (
	"time"

	"github.com/google/uuid"
)

// TypeAntiTheft is the only alert type the simulation currently raises.
const TypeAntiTheft = "Anti-Theft"

// Alert is an incident record produced by an anomaly on a bike.
type Alert struct {
	ID          uuid.UUID
	BikeID      uuid.UUID `db:"bike_id"`
	AlertType   string    `db:"alert_type"`
	Timestamp   time.Time
	Description string
	// Resolved alerts stay on record; resolving one forces the bike back
	// to Active.
	Resolved bool
}
