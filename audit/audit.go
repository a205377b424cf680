// Package audit records who did what to which record. Lifecycle transitions
// append an entry inside the same transaction as the writes they describe.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Entry struct {
	ID        uuid.UUID
	ActorID   *uuid.UUID `db:"actor_id"`
	Action    string
	Entity    string
	EntityID  string    `db:"entity_id"`
	Detail    string
	CreatedAt time.Time `db:"created_at"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetEntries(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, getEntries, limit)
	return entries, err
}

const getEntries = `SELECT * FROM audit_logs ORDER BY created_at DESC LIMIT $1`

// AppendTx writes an entry on the given executor, typically an open
// transaction so the entry commits or rolls back with the writes it records.
func AppendTx(ctx context.Context, q sqlx.ExtContext, e Entry) error {
	_, err := q.ExecContext(ctx, appendEntry, uuid.New(), e.ActorID, e.Action, e.Entity, e.EntityID, e.Detail)
	return err
}

const appendEntry = `
INSERT INTO audit_logs (id, actor_id, action, entity, entity_id, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
`
