// Package cache is a small JSON cache over Redis. A nil *Cache is valid and
// behaves as a permanent miss, so callers never branch on whether Redis is
// configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	applog "campusmarket/internal/log"
)

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// Open connects to addr and pings it. An empty addr or a failed ping returns
// nil and the app runs without a cache.
func Open(addr, password string, db int, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		applog.With("cache.disabled", map[string]any{"addr": addr}).WithField("err", err.Error()).Warn("redis unreachable")
		_ = rdb.Close()
		return nil
	}
	return New(rdb, ttl)
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, prefix: "cm:"}
}

// Get decodes the cached value into dst. It reports false on a miss or any
// Redis error.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			applog.With("cache.get", map[string]any{"key": key}).WithField("err", err.Error()).Warn("cache read failed")
		}
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		applog.With("cache.set", map[string]any{"key": key}).WithField("err", err.Error()).Warn("cache write failed")
	}
}

// Bump increments a namespace generation. Keys built with Gen change when
// the namespace is bumped, which invalidates them without a SCAN.
func (c *Cache) Bump(ctx context.Context, ns string) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.prefix+"gen:"+ns).Err(); err != nil {
		applog.With("cache.bump", map[string]any{"ns": ns}).WithField("err", err.Error()).Warn("cache bump failed")
	}
}

func (c *Cache) Gen(ctx context.Context, ns string) int64 {
	if c == nil {
		return 0
	}
	n, err := c.rdb.Get(ctx, c.prefix+"gen:"+ns).Int64()
	if err != nil {
		return 0
	}
	return n
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
