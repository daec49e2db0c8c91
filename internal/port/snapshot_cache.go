package port

import (
	"context"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
)

// SnapshotCache is an optional fast read path for central stock snapshots.
// Misses and cache errors fall back to the repository.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, productID string) (*domain.StockSnapshot, error)
	SetSnapshot(ctx context.Context, snap domain.StockSnapshot) error
}
