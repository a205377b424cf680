// Package announcement
package announcement

import (
	"time"

	"github.com/google/uuid"
)

type Announcement struct {
	ID        uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time `db:"created_at"`
}
