package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Collection caches a whole list under one key. Any write to the underlying
// table must call Invalidate; the next read repopulates it. A nil Collection
// is a valid, always-missing cache.
type Collection[T any] struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewCollection[T any](client *redis.Client, key string, ttl time.Duration) *Collection[T] {
	if client == nil {
		return nil
	}
	return &Collection[T]{client: client, key: key, ttl: ttl}
}

// Get returns the cached list. Errors count as a miss.
func (c *Collection[T]) Get(ctx context.Context) ([]T, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", c.key).Msg("cache read failed")
		}
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("discarding corrupt cache entry")
		c.Invalidate(ctx)
		return nil, false
	}
	return items, true
}

func (c *Collection[T]) Set(ctx context.Context, items []T) {
	if c == nil {
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("failed to encode cache entry")
		return
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("cache write failed")
	}
}

func (c *Collection[T]) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("cache invalidation failed")
	}
}
