package announcement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("announcement not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAnnouncements(ctx context.Context) ([]Announcement, error) {
	var announcements []Announcement
	err := r.db.SelectContext(ctx, &announcements, getAnnouncements)
	return announcements, err
}

const getAnnouncements = `SELECT * FROM announcements ORDER BY created_at DESC`

func (r *Repository) Create(ctx context.Context, title, body string) (Announcement, error) {
	var a Announcement
	err := r.db.GetContext(ctx, &a, createAnnouncement, uuid.New(), title, body)
	return a, err
}

const createAnnouncement = `
INSERT INTO announcements (id, title, body, created_at)
VALUES ($1, $2, $3, now())
RETURNING *
`

func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, body string) (Announcement, error) {
	var a Announcement
	err := r.db.GetContext(ctx, &a, updateAnnouncement, title, body, id)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

const updateAnnouncement = `UPDATE announcements SET title = $1, body = $2 WHERE id = $3 RETURNING *`

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteAnnouncement, id)
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

const deleteAnnouncement = `DELETE FROM announcements WHERE id = $1`
