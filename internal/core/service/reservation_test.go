package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
)

func TestAllocate_ReservesStock(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	result, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 5)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if result.Status != domain.StatusAllocated {
		t.Errorf("expected status %s, got %s", domain.StatusAllocated, result.Status)
	}
	if result.OnHand != 12 {
		t.Errorf("expected onHand 12, got %d", result.OnHand)
	}
	if result.Allocated != 5 {
		t.Errorf("expected allocated 5, got %d", result.Allocated)
	}
}

func TestAllocate_InsufficientAvailable(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 10); err != nil {
		t.Fatalf("first allocate failed: %v", err)
	}

	// 2 units remain available; asking for 3 must fail without changes.
	_, err := svc.Allocate(context.Background(), "", "order-2", "ABC-001", 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}

	rec, _ := store.GetStock(context.Background(), "ABC-001")
	if rec.Allocated != 10 {
		t.Errorf("expected allocated 10, got %d", rec.Allocated)
	}
}

func TestAllocate_UnknownProduct(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	_, err := svc.Allocate(context.Background(), "", "order-1", "MISSING", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestAllocate_IdempotentReplay(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	first, err := svc.Allocate(context.Background(), "key-1", "order-1", "ABC-001", 5)
	if err != nil {
		t.Fatalf("first allocate failed: %v", err)
	}

	second, err := svc.Allocate(context.Background(), "key-1", "order-1", "ABC-001", 5)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	// Replay must not allocate a second time.
	if second.Allocated != first.Allocated {
		t.Errorf("expected allocated %d after replay, got %d", first.Allocated, second.Allocated)
	}
	if second.Status != domain.StatusAllocated {
		t.Errorf("expected status %s, got %s", domain.StatusAllocated, second.Status)
	}

	changes, _ := store.ListChanges(context.Background())
	if len(changes) != 1 {
		t.Errorf("expected 1 change log entry, got %d", len(changes))
	}
}

func TestAllocate_RecordsIdempotencyKey(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "key-1", "order-1", "ABC-001", 5); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	rec, err := store.GetIdempotency(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("get idempotency: %v", err)
	}
	if rec == nil {
		t.Fatal("expected idempotency record to be stored")
	}
	if rec.RequestHash != "order-1:ABC-001:5" {
		t.Errorf("unexpected request hash: %s", rec.RequestHash)
	}
}

func TestAllocate_NoKeyAllocatesEveryTime(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 3); err != nil {
		t.Fatalf("first allocate failed: %v", err)
	}
	result, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 3)
	if err != nil {
		t.Fatalf("second allocate failed: %v", err)
	}
	if result.Allocated != 6 {
		t.Errorf("expected allocated 6, got %d", result.Allocated)
	}
}

func TestCommit_ConsumesReservation(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 5); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	result, err := svc.Commit(context.Background(), "order-1", "ABC-001", 5)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if result.Status != domain.StatusCommitted {
		t.Errorf("expected status %s, got %s", domain.StatusCommitted, result.Status)
	}
	if result.OnHand != 7 {
		t.Errorf("expected onHand 7, got %d", result.OnHand)
	}
	if result.Allocated != 0 {
		t.Errorf("expected allocated 0, got %d", result.Allocated)
	}
}

func TestCommit_WithoutReservation(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	_, err := svc.Commit(context.Background(), "order-1", "ABC-001", 5)
	if !errors.Is(err, ErrInsufficientReservation) {
		t.Errorf("expected ErrInsufficientReservation, got: %v", err)
	}
}

func TestRelease_ReturnsStockToAvailability(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 5); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	result, err := svc.Release(context.Background(), "order-1", "ABC-001", 5)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if result.Status != domain.StatusReleased {
		t.Errorf("expected status %s, got %s", domain.StatusReleased, result.Status)
	}
	if result.OnHand != 12 {
		t.Errorf("expected onHand 12, got %d", result.OnHand)
	}
	if result.Allocated != 0 {
		t.Errorf("expected allocated 0, got %d", result.Allocated)
	}
}

func TestRelease_MoreThanAllocated(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 2); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	_, err := svc.Release(context.Background(), "order-1", "ABC-001", 3)
	if !errors.Is(err, ErrInsufficientReservation) {
		t.Errorf("expected ErrInsufficientReservation, got: %v", err)
	}
}

func TestReservation_PartialCommitAndRelease(t *testing.T) {
	store := newSeededStore(t)
	svc := NewStockService(store, store, zap.NewNop())

	if _, err := svc.Allocate(context.Background(), "", "order-1", "ABC-001", 5); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if _, err := svc.Commit(context.Background(), "order-1", "ABC-001", 2); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	result, err := svc.Release(context.Background(), "order-1", "ABC-001", 3)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if result.OnHand != 10 {
		t.Errorf("expected onHand 10, got %d", result.OnHand)
	}
	if result.Allocated != 0 {
		t.Errorf("expected allocated 0, got %d", result.Allocated)
	}
}
