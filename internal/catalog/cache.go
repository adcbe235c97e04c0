package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis helpers for cached snapshots.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client yields a no-op cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func snapshotKey(catalogID string) string {
	return "catalog:snapshot:" + catalogID
}

// GetSnapshot loads a cached snapshot. It reports whether the key existed.
func (c *Cache) GetSnapshot(ctx context.Context, catalogID string) (Snapshot, bool, error) {
	if c == nil || c.client == nil || catalogID == "" {
		return Snapshot{}, false, nil
	}
	data, err := c.client.Get(ctx, snapshotKey(catalogID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// SetSnapshot stores the snapshot with the configured TTL.
func (c *Cache) SetSnapshot(ctx context.Context, snap Snapshot) error {
	if c == nil || c.client == nil || snap.CatalogID == "" {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(snap.CatalogID), data, c.ttl).Err()
}

// Invalidate drops the cached snapshot for a catalog.
func (c *Cache) Invalidate(ctx context.Context, catalogID string) error {
	if c == nil || c.client == nil || catalogID == "" {
		return nil
	}
	return c.client.Del(ctx, snapshotKey(catalogID)).Err()
}
