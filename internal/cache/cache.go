// Package cache wraps go-cache with a typed, context-aware interface.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/newhook/flagtrack/internal/logging"
)

const (
	// DefaultExpiration uses the expiration the cache was created with.
	DefaultExpiration = gocache.DefaultExpiration
	// DefaultCleanupInterval is how often expired items are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// Manager is a typed key/value cache.
type Manager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
}

// InMemory is a Manager backed by go-cache.
type InMemory[K comparable, V any] struct {
	name  string
	cache *gocache.Cache
}

var _ Manager[string, []byte] = (*InMemory[string, []byte])(nil)

// NewInMemory creates an in-process cache. name only labels log lines.
func NewInMemory[K comparable, V any](name string, ttl, cleanup time.Duration) *InMemory[K, V] {
	return &InMemory[K, V]{
		name:  name,
		cache: gocache.New(ttl, cleanup),
	}
}

func cacheKey[K comparable](key K) string {
	return fmt.Sprint(key)
}

// Get returns the cached value. A value of the wrong type counts as a miss.
func (c *InMemory[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	raw, ok := c.cache.Get(cacheKey(key))
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		logging.WarnContext(ctx, "cache value has unexpected type", "cache", c.name, "key", cacheKey(key))
		return zero, false
	}
	return v, true
}

// Set stores value under key for ttl.
func (c *InMemory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(cacheKey(key), value, ttl)
}

// Delete removes keys.
func (c *InMemory[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(cacheKey(key))
	}
}

// Flush removes every item.
func (c *InMemory[K, V]) Flush(ctx context.Context) {
	c.cache.Flush()
	logging.DebugContext(ctx, "cache flushed", "cache", c.name)
}
