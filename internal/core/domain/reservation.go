package domain

import "time"

type AllocationStatus string

const (
	StatusAllocated AllocationStatus = "ALLOCATED"
	StatusCommitted AllocationStatus = "COMMITTED"
	StatusReleased  AllocationStatus = "RELEASED"
)

// AllocationResult is the response shape of the reservation operations.
type AllocationResult struct {
	Status    AllocationStatus `json:"status"`
	ProductID string           `json:"productId"`
	OnHand    int              `json:"onHand"`
	Allocated int              `json:"allocated"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
