package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
)

// mockSyncClient records pushed batches and can fail the first N calls with
// an unreachable-central error, or every call with a permanent error.
type mockSyncClient struct {
	mu           sync.Mutex
	batches      []domain.SyncBatch
	failures     int
	permanentErr error
}

func (m *mockSyncClient) PushBatch(ctx context.Context, batch domain.SyncBatch) (domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = append(m.batches, batch)
	if m.permanentErr != nil {
		return domain.SyncResult{}, m.permanentErr
	}
	if m.failures > 0 {
		m.failures--
		return domain.SyncResult{}, port.ErrCentralUnavailable
	}
	n := len(batch.Items)
	return domain.SyncResult{Received: n, Applied: n}, nil
}

func (m *mockSyncClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockSyncClient) lastBatch() domain.SyncBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[len(m.batches)-1]
}

func TestPushNow_EmptyOutbox(t *testing.T) {
	store := newSeededStore(t)
	client := &mockSyncClient{}
	svc := NewSyncService(store, store, client, 3, time.Millisecond, zap.NewNop())

	result, err := svc.PushNow(context.Background())
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if result.Received != 0 || result.Applied != 0 || result.Skipped != 0 {
		t.Errorf("expected zero result, got %+v", result)
	}
	if client.calls() != 0 {
		t.Errorf("expected no network calls, got %d", client.calls())
	}
}

func TestPushNow_DeduplicatesDirtyProducts(t *testing.T) {
	store := newSeededStore(t)
	store.CreateStock(context.Background(), domain.StockRecord{ProductID: "ABC-002", OnHand: 30, UpdatedAt: time.Now().UTC()})
	stock := NewStockService(store, store, zap.NewNop())
	client := &mockSyncClient{}
	svc := NewSyncService(store, store, client, 3, time.Millisecond, zap.NewNop())

	// Two mutations of the same product produce one batch item with the
	// current state, not one item per change log entry.
	if _, err := stock.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if _, err := stock.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if _, err := stock.Adjust(context.Background(), "ABC-002", -5); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	if _, err := svc.PushNow(context.Background()); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	batch := client.lastBatch()
	if len(batch.Items) != 2 {
		t.Fatalf("expected 2 batch items, got %d", len(batch.Items))
	}
	quantities := map[string]int{}
	for _, item := range batch.Items {
		quantities[item.ProductID] = item.Quantity
	}
	if quantities["ABC-001"] != 14 {
		t.Errorf("expected ABC-001 quantity 14, got %d", quantities["ABC-001"])
	}
	if quantities["ABC-002"] != 25 {
		t.Errorf("expected ABC-002 quantity 25, got %d", quantities["ABC-002"])
	}
}

func TestPushNow_ClearsOutboxOnSuccess(t *testing.T) {
	store := newSeededStore(t)
	stock := NewStockService(store, store, zap.NewNop())
	client := &mockSyncClient{}
	svc := NewSyncService(store, store, client, 3, time.Millisecond, zap.NewNop())

	if _, err := stock.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if _, err := svc.PushNow(context.Background()); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	changes, _ := store.ListChanges(context.Background())
	if len(changes) != 0 {
		t.Errorf("expected empty outbox after push, got %d entries", len(changes))
	}

	// The next push is a no-op.
	if _, err := svc.PushNow(context.Background()); err != nil {
		t.Fatalf("second push failed: %v", err)
	}
	if client.calls() != 1 {
		t.Errorf("expected 1 network call, got %d", client.calls())
	}
}

func TestPushNow_RetriesWhenCentralUnavailable(t *testing.T) {
	store := newSeededStore(t)
	stock := NewStockService(store, store, zap.NewNop())
	client := &mockSyncClient{failures: 1}
	svc := NewSyncService(store, store, client, 3, time.Millisecond, zap.NewNop())

	if _, err := stock.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	result, err := svc.PushNow(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("expected 1 applied, got %d", result.Applied)
	}
	if client.calls() != 2 {
		t.Errorf("expected 2 push attempts, got %d", client.calls())
	}
}

func TestPushNow_GivesUpAfterMaxRetries(t *testing.T) {
	store := newSeededStore(t)
	stock := NewStockService(store, store, zap.NewNop())
	client := &mockSyncClient{failures: 100}
	svc := NewSyncService(store, store, client, 3, time.Millisecond, zap.NewNop())

	if _, err := stock.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	_, err := svc.PushNow(context.Background())
	if !errors.Is(err, port.ErrCentralUnavailable) {
		t.Fatalf("expected ErrCentralUnavailable, got: %v", err)
	}
	if client.calls() != 3 {
		t.Errorf("expected 3 push attempts, got %d", client.calls())
	}

	// The outbox survives a failed push so the next cycle retries it.
	changes, _ := store.ListChanges(context.Background())
	if len(changes) != 1 {
		t.Errorf("expected outbox to be preserved, got %d entries", len(changes))
	}
}

func TestPushNow_PermanentErrorNotRetried(t *testing.T) {
	store := newSeededStore(t)
	stock := NewStockService(store, store, zap.NewNop())
	client := &mockSyncClient{permanentErr: errors.New("malformed batch")}
	svc := NewSyncService(store, store, client, 3, time.Millisecond, zap.NewNop())

	if _, err := stock.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	_, err := svc.PushNow(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if client.calls() != 1 {
		t.Errorf("expected 1 push attempt, got %d", client.calls())
	}
}
