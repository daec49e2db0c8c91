package port

import (
	"context"
	"errors"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
)

// ErrVersionConflict signals that a conditional stock write lost the race:
// the stored version no longer matched the version read before the mutation.
var ErrVersionConflict = errors.New("stock version conflict")

type StockRepository interface {
	// GetStock returns the current record, or nil when the product is unknown.
	GetStock(ctx context.Context, productID string) (*domain.StockRecord, error)

	// CreateStock provisions a record (seed/initial load). Idempotent upsert.
	CreateStock(ctx context.Context, rec domain.StockRecord) error

	// UpdateStock performs the conditional write: it succeeds only while the
	// stored version equals rec.Version, incrementing it on success, and
	// appends the change log entry in the same atomic unit. When idem is
	// non-nil the idempotency record is stored in that same unit. A lost
	// version race returns ErrVersionConflict with nothing written.
	UpdateStock(ctx context.Context, rec domain.StockRecord, change domain.ChangeLogEntry, idem *domain.IdempotencyRecord) error
}

type OutboxRepository interface {
	// ListChanges returns every pending change log entry.
	ListChanges(ctx context.Context) ([]domain.ChangeLogEntry, error)

	// ClearChanges bulk-deletes the entire change log.
	ClearChanges(ctx context.Context) error
}

type IdempotencyRepository interface {
	// GetIdempotency returns the record for a key, or nil when unseen.
	GetIdempotency(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// CreateProduct provisions a catalog entry. Idempotent upsert.
	CreateProduct(ctx context.Context, p domain.Product) error
}
