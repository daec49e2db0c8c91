package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/port"
	"github.com/julianszw/inventory-management-system/internal/trace"
)

// CentralClient pushes snapshot batches to the central node's merge
// endpoint over HTTP. Any failure to obtain a merge result wraps
// port.ErrCentralUnavailable so the pusher knows it can retry.
type CentralClient struct {
	baseURL string
	httpc   *http.Client
}

func NewCentralClient(baseURL string, timeout time.Duration) *CentralClient {
	return &CentralClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *CentralClient) PushBatch(ctx context.Context, batch domain.SyncBatch) (domain.SyncResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync/pull", bytes.NewReader(body))
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := trace.FromContext(ctx); id != "" {
		req.Header.Set("X-Trace-Id", id)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("%w: %v", port.ErrCentralUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SyncResult{}, fmt.Errorf("%w: central responded %d", port.ErrCentralUnavailable, resp.StatusCode)
	}

	var result domain.SyncResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.SyncResult{}, fmt.Errorf("%w: decode merge result: %v", port.ErrCentralUnavailable, err)
	}
	return result, nil
}
