package domain

import "time"

// Product is a catalog entry. Stock for a product lives in its own record.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updatedAt"`
}
