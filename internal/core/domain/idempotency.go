package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord remembers that an allocation request carrying a given
// Idempotency-Key already executed. Key is unique in storage.
type IdempotencyRecord struct {
	ID          uuid.UUID
	Key         string
	RequestHash string
	CreatedAt   time.Time
}

// RequestHash derives the stored fingerprint of an allocation request.
func RequestHash(orderID, productID string, quantity int) string {
	return fmt.Sprintf("%s:%s:%d", orderID, productID, quantity)
}
