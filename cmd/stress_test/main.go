package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/adapter/storage"
	"github.com/julianszw/inventory-management-system/internal/core/service"
)

const (
	productID     = "ABC-001"
	initialStock  = 12
	totalRequests = 20
)

func main() {
	ctx := context.Background()
	logger := zap.NewNop()

	store := storage.NewMemoryStore()
	if err := storage.SeedStore(ctx, store, store); err != nil {
		log.Fatalf("failed to seed store: %v", err)
	}

	stockService := service.NewStockService(store, store, logger)

	// Counters
	var successCount atomic.Int32
	var retryCount atomic.Int32

	// Spawn concurrent +1 adjustments against the same product
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				_, err := stockService.Adjust(ctx, productID, 1)
				if err == nil {
					successCount.Add(1)
					return
				}
				if !errors.Is(err, service.ErrConcurrencyExhausted) {
					log.Fatalf("unexpected adjust error: %v", err)
				}
				retryCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	retries := retryCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Client Retries:   %d\n", retries)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	snap, err := stockService.GetSnapshot(ctx, productID)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", snap.Quantity)

	expected := initialStock + totalRequests
	if snap.Quantity == expected {
		fmt.Printf("PASS: No lost updates, stock is %d\n", expected)
	} else {
		fmt.Printf("FAIL: Expected stock %d, got %d\n", expected, snap.Quantity)
	}
}
