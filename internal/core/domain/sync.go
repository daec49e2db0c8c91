package domain

import "time"

// StockSnapshot is one item of a sync batch and the wire shape of a stock
// read: the product's current quantity as of UpdatedAt.
type StockSnapshot struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Supersedes reports whether the snapshot wins over an existing central
// record. Strictly newer timestamps win; equal timestamps keep the existing
// record. A zero UpdatedAt is the earliest possible value and never wins.
func (s StockSnapshot) Supersedes(existing CentralStockRecord) bool {
	return s.UpdatedAt.After(existing.UpdatedAt)
}

// SyncBatch is the payload pushed from a store node to central.
type SyncBatch struct {
	Items []StockSnapshot `json:"items"`
}

// SyncResult summarizes a merge: every item is either applied or skipped.
type SyncResult struct {
	Received int `json:"received"`
	Applied  int `json:"applied"`
	Skipped  int `json:"skipped"`
}
