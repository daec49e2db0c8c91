package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
	"github.com/julianszw/inventory-management-system/internal/trace"
)

var (
	ErrNotFound                = errors.New("stock not found")
	ErrInvalidAdjustment       = errors.New("resulting stock cannot be negative")
	ErrInsufficientStock       = errors.New("insufficient stock to allocate")
	ErrInsufficientReservation = errors.New("insufficient reservation")
	ErrConcurrencyExhausted    = errors.New("concurrent update retries exhausted")
)

const (
	mutateMaxAttempts = 3
	mutateBackoffBase = 50 * time.Millisecond
)

// StockService owns every store-side stock mutation. All writes go through
// mutate, which pairs the stock update with a change log append.
type StockService struct {
	stocks port.StockRepository
	idems  port.IdempotencyRepository
	logger *zap.Logger
}

func NewStockService(stocks port.StockRepository, idems port.IdempotencyRepository, logger *zap.Logger) *StockService {
	return &StockService{stocks: stocks, idems: idems, logger: logger}
}

// mutate reads the product fresh, applies fn to the snapshot, and attempts a
// conditional write that only succeeds while the stored version is unchanged.
// A lost race retries from a fresh read, sleeping 50ms x attempt in between.
// fn must be a pure transformation: it may run once per attempt with a
// different input snapshot.
func (s *StockService) mutate(ctx context.Context, productID string, idem *domain.IdempotencyRecord, fn func(cur domain.StockRecord, now time.Time) (domain.StockRecord, error)) (domain.StockRecord, error) {
	for attempt := 1; attempt <= mutateMaxAttempts; attempt++ {
		rec, err := s.stocks.GetStock(ctx, productID)
		if err != nil {
			return domain.StockRecord{}, fmt.Errorf("read stock: %w", err)
		}
		if rec == nil {
			return domain.StockRecord{}, ErrNotFound
		}

		now := time.Now().UTC()
		next, err := fn(*rec, now)
		if err != nil {
			return domain.StockRecord{}, err
		}
		next.ProductID = rec.ProductID
		next.Version = rec.Version
		next.UpdatedAt = now

		change := domain.ChangeLogEntry{ID: uuid.New(), ProductID: productID, UpdatedAt: now}
		if idem != nil {
			idem.CreatedAt = now
		}

		err = s.stocks.UpdateStock(ctx, next, change, idem)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, port.ErrVersionConflict) {
			return domain.StockRecord{}, fmt.Errorf("write stock: %w", err)
		}
		if attempt < mutateMaxAttempts {
			time.Sleep(mutateBackoffBase * time.Duration(attempt))
		}
	}

	s.logger.Error("stock mutation lost every retry",
		zap.String("trace_id", trace.FromContext(ctx)),
		zap.String("product_id", productID),
		zap.Int("attempts", mutateMaxAttempts))
	return domain.StockRecord{}, ErrConcurrencyExhausted
}

// GetSnapshot returns the product's current on-hand quantity.
func (s *StockService) GetSnapshot(ctx context.Context, productID string) (domain.StockSnapshot, error) {
	rec, err := s.stocks.GetStock(ctx, productID)
	if err != nil {
		return domain.StockSnapshot{}, fmt.Errorf("read stock: %w", err)
	}
	if rec == nil {
		return domain.StockSnapshot{}, ErrNotFound
	}
	return snapshotOf(*rec), nil
}

// Adjust applies a signed delta to the on-hand quantity. A delta that would
// drive on-hand negative fails with ErrInvalidAdjustment and writes nothing.
func (s *StockService) Adjust(ctx context.Context, productID string, delta int) (domain.StockSnapshot, error) {
	rec, err := s.mutate(ctx, productID, nil, func(cur domain.StockRecord, now time.Time) (domain.StockRecord, error) {
		newOnHand := cur.OnHand + delta
		if newOnHand < 0 {
			return domain.StockRecord{}, ErrInvalidAdjustment
		}
		cur.OnHand = newOnHand
		return cur, nil
	})
	if err != nil {
		return domain.StockSnapshot{}, err
	}

	s.logger.Info("stock adjusted",
		zap.String("trace_id", trace.FromContext(ctx)),
		zap.String("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("on_hand", rec.OnHand))
	return snapshotOf(rec), nil
}

func snapshotOf(rec domain.StockRecord) domain.StockSnapshot {
	return domain.StockSnapshot{
		ProductID: rec.ProductID,
		Quantity:  rec.OnHand,
		UpdatedAt: rec.UpdatedAt,
	}
}
