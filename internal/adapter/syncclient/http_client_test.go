package syncclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/adapter/handler"
	"github.com/julianszw/inventory-management-system/internal/adapter/storage"
	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/core/service"
	"github.com/julianszw/inventory-management-system/internal/metrics"
	"github.com/julianszw/inventory-management-system/internal/port"
)

func newCentralServer(t *testing.T) (*httptest.Server, *service.MergeService) {
	t.Helper()

	central := storage.NewMemoryCentral()
	logger := zap.NewNop()
	mergeService := service.NewMergeService(central, nil, logger)
	productService := service.NewProductService(central)
	h := handler.NewCentralHandler(mergeService, productService, metrics.New())

	srv := httptest.NewServer(h.Routes(logger))
	t.Cleanup(srv.Close)
	return srv, mergeService
}

func TestPushBatch(t *testing.T) {
	srv, merge := newCentralServer(t)
	client := NewCentralClient(srv.URL, time.Second)

	batch := domain.SyncBatch{Items: []domain.StockSnapshot{
		{ProductID: "ABC-001", Quantity: 14, UpdatedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
	}}
	result, err := client.PushBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("PushBatch failed: %v", err)
	}
	if result.Received != 1 || result.Applied != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	snap, err := merge.GetSnapshot(context.Background(), "ABC-001")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap.Quantity != 14 {
		t.Errorf("expected quantity 14, got %d", snap.Quantity)
	}
}

func TestPushBatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewCentralClient(srv.URL, time.Second)
	_, err := client.PushBatch(context.Background(), domain.SyncBatch{Items: []domain.StockSnapshot{{ProductID: "ABC-001"}}})
	if !errors.Is(err, port.ErrCentralUnavailable) {
		t.Errorf("expected ErrCentralUnavailable, got: %v", err)
	}
}

func TestPushBatch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewCentralClient(url, 100*time.Millisecond)
	_, err := client.PushBatch(context.Background(), domain.SyncBatch{Items: []domain.StockSnapshot{{ProductID: "ABC-001"}}})
	if !errors.Is(err, port.ErrCentralUnavailable) {
		t.Errorf("expected ErrCentralUnavailable, got: %v", err)
	}
}

// Exercises the whole cycle over real HTTP: a store mutation dirties the
// outbox, PushNow delivers the snapshot batch, central merges it and serves
// the reconciled value.
func TestStoreToCentralSync(t *testing.T) {
	srv, merge := newCentralServer(t)

	store := storage.NewMemoryStore()
	if err := storage.SeedStore(context.Background(), store, store); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	logger := zap.NewNop()
	stockService := service.NewStockService(store, store, logger)
	client := NewCentralClient(srv.URL, time.Second)
	syncService := service.NewSyncService(store, store, client, 3, time.Millisecond, logger)

	if _, err := stockService.Adjust(context.Background(), "ABC-001", 2); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if _, err := stockService.Allocate(context.Background(), "", "order-1", "ABC-002", 5); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	result, err := syncService.PushNow(context.Background())
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if result.Received != 2 || result.Applied != 2 {
		t.Errorf("unexpected result: %+v", result)
	}

	snap, err := merge.GetSnapshot(context.Background(), "ABC-001")
	if err != nil {
		t.Fatalf("central snapshot: %v", err)
	}
	if snap.Quantity != 14 {
		t.Errorf("expected central quantity 14, got %d", snap.Quantity)
	}

	// Allocations reserve but do not consume, so on-hand is what syncs.
	snap, err = merge.GetSnapshot(context.Background(), "ABC-002")
	if err != nil {
		t.Fatalf("central snapshot: %v", err)
	}
	if snap.Quantity != 30 {
		t.Errorf("expected central quantity 30, got %d", snap.Quantity)
	}

	changes, _ := store.ListChanges(context.Background())
	if len(changes) != 0 {
		t.Errorf("expected drained outbox, got %d entries", len(changes))
	}

	// Replaying the same state is idempotent on the central side.
	if _, err := stockService.Adjust(context.Background(), "ABC-001", 1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	result, err = syncService.PushNow(context.Background())
	if err != nil {
		t.Fatalf("second push failed: %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("expected 1 applied, got %+v", result)
	}
	snap, _ = merge.GetSnapshot(context.Background(), "ABC-001")
	if snap.Quantity != 15 {
		t.Errorf("expected central quantity 15, got %d", snap.Quantity)
	}
}
