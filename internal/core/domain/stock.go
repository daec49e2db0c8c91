package domain

import "time"

// StockRecord is the store node's per-product ledger row. Version backs the
// conditional write used for optimistic locking; after any successful
// mutation 0 <= Allocated <= OnHand holds.
type StockRecord struct {
	ProductID string
	OnHand    int
	Allocated int
	Version   int // optimistic locking
	UpdatedAt time.Time
}

// Available is the on-hand stock not reserved against open orders.
func (s StockRecord) Available() int {
	return s.OnHand - s.Allocated
}

// CentralStockRecord is the central node's reconciled view of a product.
// It carries a single quantity and no version; conflicting writes are
// resolved by timestamp, not by lock.
type CentralStockRecord struct {
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}
