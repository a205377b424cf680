// Package geofence
package geofence

import (
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Type int

const (
	Campus Type = iota
	Restricted
)

func (t Type) String() string {
	return [...]string{"campus", "restricted"}[t]
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "campus":
			*t = Campus
			return nil
		case "restricted":
			*t = Restricted
			return nil
		}
	}
	panic("invalid scan type")
}

// Geofence is a circular campus zone used for display on the fleet map.
type Geofence struct {
	ID           uuid.UUID
	Name         string
	Center       pgtype.Point
	RadiusMeters int `db:"radius_meters"`
	Type         Type
}
