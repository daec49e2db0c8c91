package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
	"github.com/julianszw/inventory-management-system/internal/trace"
)

// MergeService is the central node's core: it reconciles incoming snapshot
// batches against the central view with last-write-wins timestamps and
// serves reconciled reads. cache may be nil.
type MergeService struct {
	stocks port.CentralStockRepository
	cache  port.SnapshotCache
	logger *zap.Logger
}

func NewMergeService(stocks port.CentralStockRepository, cache port.SnapshotCache, logger *zap.Logger) *MergeService {
	return &MergeService{stocks: stocks, cache: cache, logger: logger}
}

// ApplyBatch merges every item of the batch in one transaction: unknown
// products are created, known products are overwritten only when the
// incoming timestamp is strictly newer. Equal timestamps keep the existing
// record and count as skipped.
func (s *MergeService) ApplyBatch(ctx context.Context, batch domain.SyncBatch) (domain.SyncResult, error) {
	var result domain.SyncResult
	var applied []domain.StockSnapshot

	err := s.stocks.WithinTx(ctx, func(tx port.CentralStockTx) error {
		for _, item := range batch.Items {
			result.Received++

			existing, err := tx.GetStock(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if existing != nil && !item.Supersedes(*existing) {
				result.Skipped++
				continue
			}

			rec := domain.CentralStockRecord{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UpdatedAt: item.UpdatedAt,
			}
			if err := tx.UpsertStock(ctx, rec); err != nil {
				return err
			}
			result.Applied++
			applied = append(applied, item)
		}
		return nil
	})
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("apply batch: %w", err)
	}

	if s.cache != nil {
		for _, snap := range applied {
			if err := s.cache.SetSnapshot(ctx, snap); err != nil {
				s.logger.Warn("snapshot cache update failed",
					zap.String("product_id", snap.ProductID), zap.Error(err))
			}
		}
	}

	s.logger.Info("sync batch merged",
		zap.String("trace_id", trace.FromContext(ctx)),
		zap.Int("received", result.Received),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// GetSnapshot serves the reconciled view, preferring the cache when present.
func (s *MergeService) GetSnapshot(ctx context.Context, productID string) (domain.StockSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.GetSnapshot(ctx, productID)
		if err == nil && snap != nil {
			return *snap, nil
		}
		if err != nil {
			s.logger.Warn("snapshot cache read failed",
				zap.String("product_id", productID), zap.Error(err))
		}
	}

	rec, err := s.stocks.GetStock(ctx, productID)
	if err != nil {
		return domain.StockSnapshot{}, fmt.Errorf("read stock: %w", err)
	}
	if rec == nil {
		return domain.StockSnapshot{}, ErrNotFound
	}

	snap := domain.StockSnapshot{
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		UpdatedAt: rec.UpdatedAt,
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snap); err != nil {
			s.logger.Warn("snapshot cache fill failed",
				zap.String("product_id", productID), zap.Error(err))
		}
	}
	return snap, nil
}
