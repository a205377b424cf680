package maintenance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("maintenance task not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	var t Task
	err := r.db.GetContext(ctx, &t, getTask, id)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

const getTask = `SELECT * FROM maintenance_tasks WHERE id = $1`

func (r *Repository) GetTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := r.db.SelectContext(ctx, &tasks, getTasks)
	return tasks, err
}

const getTasks = `SELECT * FROM maintenance_tasks ORDER BY date DESC`

func (r *Repository) GetTasksForBike(ctx context.Context, bikeID uuid.UUID) ([]Task, error) {
	var tasks []Task
	err := r.db.SelectContext(ctx, &tasks, getTasksForBike, bikeID)
	return tasks, err
}

const getTasksForBike = `SELECT * FROM maintenance_tasks WHERE bike_id = $1 ORDER BY date DESC`

// UpdateDescription is admin-only editing of the ticket text.
func (r *Repository) UpdateDescription(ctx context.Context, id uuid.UUID, description string) error {
	res, err := r.db.ExecContext(ctx, updateDescription, description, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const updateDescription = `UPDATE maintenance_tasks SET description = $1 WHERE id = $2`
