package port

import (
	"context"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
)

type CentralStockRepository interface {
	// GetStock returns the reconciled record, or nil when the product is
	// unknown to central.
	GetStock(ctx context.Context, productID string) (*domain.CentralStockRecord, error)

	// WithinTx runs fn inside one transaction; every read and write through
	// tx commits together or not at all.
	WithinTx(ctx context.Context, fn func(tx CentralStockTx) error) error
}

// CentralStockTx is the transactional view handed to WithinTx callbacks.
type CentralStockTx interface {
	GetStock(ctx context.Context, productID string) (*domain.CentralStockRecord, error)
	UpsertStock(ctx context.Context, rec domain.CentralStockRecord) error
}
