package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
	"github.com/julianszw/inventory-management-system/internal/trace"
)

const (
	defaultPushMaxRetries = 3
	defaultPushBackoff    = 200 * time.Millisecond
)

// SyncService drains the change outbox into a current-state snapshot batch
// and pushes it to the central merge endpoint.
type SyncService struct {
	changes        port.OutboxRepository
	stocks         port.StockRepository
	client         port.SyncClient
	maxRetries     int
	initialBackoff time.Duration
	logger         *zap.Logger
}

func NewSyncService(changes port.OutboxRepository, stocks port.StockRepository, client port.SyncClient, maxRetries int, initialBackoff time.Duration, logger *zap.Logger) *SyncService {
	if maxRetries <= 0 {
		maxRetries = defaultPushMaxRetries
	}
	if initialBackoff <= 0 {
		initialBackoff = defaultPushBackoff
	}
	return &SyncService{
		changes:        changes,
		stocks:         stocks,
		client:         client,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		logger:         logger,
	}
}

// buildBatch reduces the outbox to the set of distinct dirty products and
// captures each product's current snapshot, not one item per log entry.
func (s *SyncService) buildBatch(ctx context.Context) (domain.SyncBatch, error) {
	entries, err := s.changes.ListChanges(ctx)
	if err != nil {
		return domain.SyncBatch{}, fmt.Errorf("list changes: %w", err)
	}
	if len(entries) == 0 {
		return domain.SyncBatch{}, nil
	}

	seen := make(map[string]struct{}, len(entries))
	var items []domain.StockSnapshot
	for _, e := range entries {
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		seen[e.ProductID] = struct{}{}

		rec, err := s.stocks.GetStock(ctx, e.ProductID)
		if err != nil {
			return domain.SyncBatch{}, fmt.Errorf("read stock for batch: %w", err)
		}
		if rec == nil {
			continue
		}
		items = append(items, snapshotOf(*rec))
	}
	return domain.SyncBatch{Items: items}, nil
}

// PushNow builds a batch and delivers it. An empty batch returns {0,0,0}
// without touching the network. On success the entire outbox is cleared.
// Unreachable-central errors are retried with initialBackoff x attempt up to
// maxRetries; after that the error surfaces and the outbox stays intact for
// the next attempt.
func (s *SyncService) PushNow(ctx context.Context) (domain.SyncResult, error) {
	start := time.Now()
	traceID := trace.FromContext(ctx)

	batch, err := s.buildBatch(ctx)
	if err != nil {
		return domain.SyncResult{}, err
	}
	if len(batch.Items) == 0 {
		s.logger.Info("sync push no-op", zap.String("trace_id", traceID))
		return domain.SyncResult{}, nil
	}

	for attempt := 1; ; attempt++ {
		result, err := s.client.PushBatch(ctx, batch)
		if err == nil {
			if err := s.changes.ClearChanges(ctx); err != nil {
				return domain.SyncResult{}, fmt.Errorf("clear change log: %w", err)
			}
			s.logger.Info("sync push ok",
				zap.String("trace_id", traceID),
				zap.Int("received", result.Received),
				zap.Int("applied", result.Applied),
				zap.Int("skipped", result.Skipped),
				zap.Duration("duration", time.Since(start)))
			return result, nil
		}
		if !errors.Is(err, port.ErrCentralUnavailable) {
			return domain.SyncResult{}, err
		}
		if attempt >= s.maxRetries {
			s.logger.Error("sync push failed",
				zap.String("trace_id", traceID),
				zap.Int("attempts", attempt),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			return domain.SyncResult{}, err
		}

		backoff := s.initialBackoff * time.Duration(attempt)
		s.logger.Warn("sync push retry",
			zap.String("trace_id", traceID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		time.Sleep(backoff)
	}
}
