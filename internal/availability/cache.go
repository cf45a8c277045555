package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courtslot/internal/interval"
	"courtslot/internal/logger"
	"courtslot/internal/metrics"
)

// Cache is a redis read cache for computed day slots. Every resource has a
// version key that booking-side mutations bump; the slot key embeds the
// version, so stale entries become unreachable and age out via TTL. Redis
// failures degrade to direct computation.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func versionKey(resourceID int64) string {
	return fmt.Sprintf("availability:ver:%d", resourceID)
}

func (c *Cache) slotKey(ctx context.Context, resourceID int64, from, to interval.Date) (string, error) {
	ver, err := c.rdb.Get(ctx, versionKey(resourceID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("availability:%d:%d:%s:%s", resourceID, ver, from, to), nil
}

func (c *Cache) Get(ctx context.Context, resourceID int64, from, to interval.Date) ([]DaySlots, bool) {
	key, err := c.slotKey(ctx, resourceID, from, to)
	if err != nil {
		logger.Debug("availability cache unavailable", "error", err)
		metrics.RecordCacheLookup("error")
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Debug("availability cache read failed", "key", key, "error", err)
			metrics.RecordCacheLookup("error")
			return nil, false
		}
		metrics.RecordCacheLookup("miss")
		return nil, false
	}

	var days []DaySlots
	if err := json.Unmarshal(raw, &days); err != nil {
		logger.Error("availability cache entry corrupt", "key", key, "error", err)
		metrics.RecordCacheLookup("error")
		return nil, false
	}

	metrics.RecordCacheLookup("hit")
	return days, true
}

func (c *Cache) Set(ctx context.Context, resourceID int64, from, to interval.Date, days []DaySlots) {
	key, err := c.slotKey(ctx, resourceID, from, to)
	if err != nil {
		return
	}

	raw, err := json.Marshal(days)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Debug("availability cache write failed", "key", key, "error", err)
	}
}

// Invalidate bumps the resource's version so every cached range for it
// becomes unreachable. Satisfies booking.Invalidator.
func (c *Cache) Invalidate(ctx context.Context, resourceID int64) {
	if err := c.rdb.Incr(ctx, versionKey(resourceID)).Err(); err != nil {
		logger.Error("availability cache invalidation failed", "resource_id", resourceID, "error", err)
	}
}
