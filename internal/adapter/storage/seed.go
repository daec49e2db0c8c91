package storage

import (
	"context"
	"time"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
)

// SeedStore provisions the demo catalog and initial stock on the store
// node. Existing stock records are left untouched.
func SeedStore(ctx context.Context, stocks port.StockRepository, products port.ProductRepository) error {
	now := time.Now().UTC()

	for _, p := range demoProducts(now) {
		if err := products.CreateProduct(ctx, p); err != nil {
			return err
		}
	}

	seed := []domain.StockRecord{
		{ProductID: "ABC-001", OnHand: 12, UpdatedAt: now},
		{ProductID: "ABC-002", OnHand: 30, UpdatedAt: now},
		{ProductID: "ABC-003", OnHand: 20, UpdatedAt: now},
	}
	for _, rec := range seed {
		if err := stocks.CreateStock(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// SeedCentral provisions the demo catalog on the central node. Central
// stock records are created lazily by the first merge that mentions them.
func SeedCentral(ctx context.Context, products port.ProductRepository) error {
	now := time.Now().UTC()
	for _, p := range demoProducts(now) {
		if err := products.CreateProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func demoProducts(now time.Time) []domain.Product {
	return []domain.Product{
		{ID: "ABC-001", Name: "Laptop Lenovo ThinkPad X1", Price: 1500.00, UpdatedAt: now},
		{ID: "ABC-002", Name: "Smartphone Samsung Galaxy S23", Price: 899.99, UpdatedAt: now},
		{ID: "ABC-003", Name: "Auriculares Sony WH-1000XM5", Price: 349.99, UpdatedAt: now},
	}
}
