package bikemodel

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("bike model not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetModels(ctx context.Context) ([]BikeModel, error) {
	var models []BikeModel
	err := r.db.SelectContext(ctx, &models, getModels)
	return models, err
}

const getModels = `SELECT * FROM bike_models ORDER BY id`

func (r *Repository) GetModel(ctx context.Context, id string) (*BikeModel, error) {
	var m BikeModel
	err := r.db.GetContext(ctx, &m, getModel, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const getModel = `SELECT * FROM bike_models WHERE id = $1`
