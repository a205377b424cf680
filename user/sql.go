package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("user not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.SelectContext(ctx, &users, getUsers)
	return users, err
}

const getUsers = `SELECT * FROM users ORDER BY created_at`

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUser, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const getUser = `SELECT * FROM users WHERE id = $1`

func (r *Repository) GetUserBySubject(ctx context.Context, subject string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserBySubject, subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const getUserBySubject = `SELECT * FROM users WHERE subject = $1`

// CreateUser registers a new account for an identity-provider subject. New
// accounts start as active students with an empty balance.
func (r *Repository) CreateUser(ctx context.Context, subject string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, createUser, uuid.New(), subject)
	return &u, err
}

const createUser = `
INSERT INTO users (id, subject, role, status, balance_cents, created_at)
VALUES ($1, $2, 'Student', 'Active', 0, now())
RETURNING *
`

func (r *Repository) GetTechnicians(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.SelectContext(ctx, &users, getTechnicians)
	return users, err
}

const getTechnicians = `SELECT * FROM users WHERE role = 'Technician' ORDER BY full_name`

func (r *Repository) UpdateProfile(ctx context.Context, subject, email, name string) error {
	_, err := r.db.ExecContext(ctx, updateProfile, email, name, subject)
	return err
}

const updateProfile = `UPDATE users SET email = NULLIF($1, ''), full_name = NULLIF($2, '') WHERE subject = $3`

// UpdateAccount applies an admin edit of role and account status.
func (r *Repository) UpdateAccount(ctx context.Context, id uuid.UUID, role Role, status string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, updateAccount, role, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const updateAccount = `UPDATE users SET role = $1, status = $2 WHERE id = $3 RETURNING *`

// AssignBike links a bike to a student account; pass nil to unassign.
func (r *Repository) AssignBike(ctx context.Context, id uuid.UUID, bikeLabel *string) error {
	res, err := r.db.ExecContext(ctx, assignBike, bikeLabel, id)
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

const assignBike = `UPDATE users SET assigned_bike_label = $1 WHERE id = $2`
