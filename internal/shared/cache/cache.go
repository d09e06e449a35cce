package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReadThrough serves small per-company reference lists from Redis and
// collapses concurrent misses into one load. A nil client disables caching.
type ReadThrough struct {
	rdb    *redis.Client
	sf     singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewReadThrough(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ReadThrough {
	if logger == nil {
		logger = zap.L()
	}
	return &ReadThrough{rdb: rdb, ttl: ttl, logger: logger.Named("cache")}
}

// Get is a function rather than a method because methods cannot be generic.
func Get[T any](ctx context.Context, c *ReadThrough, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var v T
			if json.Unmarshal([]byte(cached), &v) == nil {
				return v, nil
			}
		}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if payload, err := json.Marshal(loaded); err == nil {
				if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
					c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
				}
			}
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *ReadThrough) Invalidate(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Error("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
