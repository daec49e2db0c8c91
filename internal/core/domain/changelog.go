package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeLogEntry marks a product as dirty for the next sync push. Entries
// are appended on every successful mutation and are not deduplicated at
// write time; the pusher reduces them to distinct products.
type ChangeLogEntry struct {
	ID        uuid.UUID
	ProductID string
	UpdatedAt time.Time
}
