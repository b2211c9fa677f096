// Package rediscache is an optional Redis-backed cache of entity existence
// probes. Dependency checks before order and subscription writes hit the same
// ids repeatedly; caching the positive answers saves a database round trip
// per check. A nil *Cache disables caching and every method degrades to a
// no-op, so callers never branch on whether Redis is configured.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/keapsync/internal/core/domain"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	TTL      int    `yaml:"ttl_seconds"`
}

// Cache caches positive existence answers. Negative answers are never cached:
// a missing entity may be backfilled at any moment.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a Redis-backed existence cache.
func NewCache(cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func existsKey(entityType domain.EntityType, id int64) string {
	return fmt.Sprintf("exists:%s:%d", entityType, id)
}

// Known reports whether the entity was previously marked existing. Cache
// errors are reported as a miss.
func (c *Cache) Known(ctx context.Context, entityType domain.EntityType, id int64) bool {
	if c == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, existsKey(entityType, id)).Result()
	return err == nil && n > 0
}

// MarkExists records a positive existence answer.
func (c *Cache) MarkExists(ctx context.Context, entityType domain.EntityType, id int64) {
	if c == nil {
		return
	}
	_ = c.rdb.Set(ctx, existsKey(entityType, id), "1", c.ttl).Err()
}
