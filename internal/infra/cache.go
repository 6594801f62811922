package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache is a best-effort JSON cache on top of Redis. Every method is safe on
// a nil *Cache, which behaves as a permanently empty cache; callers never
// need to branch on whether Redis is configured.
type Cache struct {
	rdb *redis.Client
	cb  *CircuitBreaker
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration, cb *CircuitBreaker) *Cache {
	if rdb == nil {
		return nil
	}
	if cb == nil {
		cb = NewCircuitBreaker(DefaultBreakerConfig())
	}
	return &Cache{rdb: rdb, cb: cb, ttl: ttl}
}

// GetJSON loads key into dest and reports whether it was a hit.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	var raw []byte
	err := c.cb.Execute(func() error {
		b, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = b
		return err
	})
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache get skipped")
		return false
	}
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores v under key with the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cb.Execute(func() error {
		return c.rdb.Set(ctx, key, b, c.ttl).Err()
	}); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache set skipped")
	}
}

// Delete drops the given keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.cb.Execute(func() error {
		return c.rdb.Del(ctx, keys...).Err()
	}); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation skipped")
	}
}

// State exposes the breaker state for the health endpoint.
func (c *Cache) State() string {
	if c == nil {
		return "disabled"
	}
	return c.cb.State().String()
}
