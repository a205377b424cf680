package geofence

import (
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetGeofences() ([]Geofence, error) {
	var geofences []Geofence
	err := r.db.Select(&geofences, getGeofences)
	return geofences, err
}

const getGeofences = `SELECT * FROM geofences`

func (r *Repository) GetGeofence(id string) (Geofence, error) {
	var g Geofence
	err := r.db.Get(&g, getGeofence, id)
	return g, err
}

const getGeofence = `SELECT * FROM geofences WHERE id = $1`
