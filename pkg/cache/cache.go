// Package cache stores fully materialized profile snapshots in the shared
// key-value store, write-through after every scrape or store read.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liscraper/pkg/kv"
	"liscraper/pkg/logger"
	"liscraper/pkg/models"
)

// Cache wraps the key-value store with snapshot serialization and a TTL
type Cache struct {
	store kv.Store
	ttl   time.Duration
	log   logger.Logger
}

// New creates a snapshot cache with the given TTL
func New(store kv.Store, ttl time.Duration, log logger.Logger) *Cache {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Cache{store: store, ttl: ttl, log: log}
}

// Get returns the cached snapshot for externalID, or nil on a miss.
// Cache failures are reported as misses; the store is the source of truth.
func (c *Cache) Get(ctx context.Context, externalID string) *models.Snapshot {
	raw, found, err := c.store.Get(ctx, key(externalID))
	if err != nil {
		c.log.WithError(err).WithField("external_id", externalID).Warn("cache read failed")
		return nil
	}
	if !found {
		return nil
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		// A corrupt entry is dropped so the next write replaces it
		c.log.WithError(err).WithField("external_id", externalID).Warn("cache entry corrupt, dropping")
		_ = c.store.Delete(ctx, key(externalID))
		return nil
	}
	return &snapshot
}

// Set writes a snapshot under the configured TTL
func (c *Cache) Set(ctx context.Context, externalID string, snapshot *models.Snapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.log.WithError(err).WithField("external_id", externalID).Warn("cache serialization failed")
		return
	}
	if err := c.store.Set(ctx, key(externalID), string(raw), c.ttl); err != nil {
		c.log.WithError(err).WithField("external_id", externalID).Warn("cache write failed")
	}
}

// Delete drops the snapshot for externalID
func (c *Cache) Delete(ctx context.Context, externalID string) {
	if err := c.store.Delete(ctx, key(externalID)); err != nil {
		c.log.WithError(err).WithField("external_id", externalID).Warn("cache delete failed")
	}
}

// Ping checks connectivity of the backing store
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func key(externalID string) string {
	return fmt.Sprintf("profile:%s", externalID)
}
