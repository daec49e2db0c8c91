package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
)

const (
	snapshotKeyPrefix = "stock:"
	snapshotTTL       = 5 * time.Minute
)

// RedisCache keeps reconciled stock snapshots on the central node's hot
// read path. Values are JSON with a TTL; storage stays the source of truth.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) GetSnapshot(ctx context.Context, productID string) (*domain.StockSnapshot, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var snap domain.StockSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &snap, nil
}

func (r *RedisCache) SetSnapshot(ctx context.Context, snap domain.StockSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKeyPrefix+snap.ProductID, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
