package port

import (
	"context"
	"errors"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
)

// ErrCentralUnavailable wraps any transport-level failure talking to the
// central merge endpoint. The pusher retries only this class of error.
var ErrCentralUnavailable = errors.New("central sync endpoint unavailable")

type SyncClient interface {
	// PushBatch delivers a snapshot batch to central and returns its merge
	// result. Failures to reach central wrap ErrCentralUnavailable.
	PushBatch(ctx context.Context, batch domain.SyncBatch) (domain.SyncResult, error)
}
