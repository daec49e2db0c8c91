package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/trace"
)

// Allocate reserves quantity units against an order. When idemKey is
// non-empty and has been seen before, the allocation is not re-executed;
// the product's current state is returned instead. On a first execution the
// idempotency record is stored in the same atomic unit as the stock write.
func (s *StockService) Allocate(ctx context.Context, idemKey, orderID, productID string, quantity int) (domain.AllocationResult, error) {
	if idemKey != "" {
		seen, err := s.idems.GetIdempotency(ctx, idemKey)
		if err != nil {
			return domain.AllocationResult{}, fmt.Errorf("idempotency lookup: %w", err)
		}
		if seen != nil {
			rec, err := s.stocks.GetStock(ctx, productID)
			if err != nil {
				return domain.AllocationResult{}, fmt.Errorf("read stock: %w", err)
			}
			if rec == nil {
				return domain.AllocationResult{}, ErrNotFound
			}
			s.logger.Info("allocation replayed",
				zap.String("trace_id", trace.FromContext(ctx)),
				zap.String("idempotency_key", idemKey),
				zap.String("product_id", productID))
			return allocationResult(domain.StatusAllocated, *rec), nil
		}
	}

	var idem *domain.IdempotencyRecord
	if idemKey != "" {
		idem = &domain.IdempotencyRecord{
			ID:          uuid.New(),
			Key:         idemKey,
			RequestHash: domain.RequestHash(orderID, productID, quantity),
		}
	}

	rec, err := s.mutate(ctx, productID, idem, func(cur domain.StockRecord, now time.Time) (domain.StockRecord, error) {
		if cur.Available() < quantity {
			return domain.StockRecord{}, ErrInsufficientStock
		}
		cur.Allocated += quantity
		return cur, nil
	})
	if err != nil {
		return domain.AllocationResult{}, err
	}

	s.logger.Info("stock allocated",
		zap.String("trace_id", trace.FromContext(ctx)),
		zap.String("order_id", orderID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return allocationResult(domain.StatusAllocated, rec), nil
}

// Commit consumes a reservation: on-hand and allocated both drop by quantity
// in a single mutation.
func (s *StockService) Commit(ctx context.Context, orderID, productID string, quantity int) (domain.AllocationResult, error) {
	rec, err := s.mutate(ctx, productID, nil, func(cur domain.StockRecord, now time.Time) (domain.StockRecord, error) {
		if cur.Allocated < quantity {
			return domain.StockRecord{}, ErrInsufficientReservation
		}
		cur.OnHand -= quantity
		cur.Allocated -= quantity
		return cur, nil
	})
	if err != nil {
		return domain.AllocationResult{}, err
	}

	s.logger.Info("reservation committed",
		zap.String("trace_id", trace.FromContext(ctx)),
		zap.String("order_id", orderID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return allocationResult(domain.StatusCommitted, rec), nil
}

// Release cancels a reservation, returning quantity units to availability.
func (s *StockService) Release(ctx context.Context, orderID, productID string, quantity int) (domain.AllocationResult, error) {
	rec, err := s.mutate(ctx, productID, nil, func(cur domain.StockRecord, now time.Time) (domain.StockRecord, error) {
		if cur.Allocated < quantity {
			return domain.StockRecord{}, ErrInsufficientReservation
		}
		cur.Allocated -= quantity
		return cur, nil
	})
	if err != nil {
		return domain.AllocationResult{}, err
	}

	s.logger.Info("reservation released",
		zap.String("trace_id", trace.FromContext(ctx)),
		zap.String("order_id", orderID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return allocationResult(domain.StatusReleased, rec), nil
}

func allocationResult(status domain.AllocationStatus, rec domain.StockRecord) domain.AllocationResult {
	return domain.AllocationResult{
		Status:    status,
		ProductID: rec.ProductID,
		OnHand:    rec.OnHand,
		Allocated: rec.Allocated,
		UpdatedAt: rec.UpdatedAt,
	}
}
