package cachemanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ReadThroughCache loads missing entries with fn and stores the result.
// Concurrent misses on the same key share one call to fn. Invalidate bumps a
// per-key epoch so a load that started before the invalidation never writes
// its stale value back.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool

	group singleflight.Group
	mu    sync.Mutex
	epoch map[K]uint64
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
		epoch:           make(map[K]uint64),
	}
}

// Get returns the cached value for key, loading it with input on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}
	return r.load(ctx, key, input, ttl)
}

// GetWithRefresh is Get but extends the TTL of a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
		return value, nil
	}
	return r.load(ctx, key, input, ttl)
}

// Invalidate drops keys from the cache and detaches any in-flight loads.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, keys ...K) error {
	if r.shouldSkipCache {
		return nil
	}
	r.mu.Lock()
	for _, key := range keys {
		r.epoch[key]++
		r.group.Forget(string(key))
	}
	r.mu.Unlock()
	return r.cache.Delete(ctx, keys...)
}

func (r *ReadThroughCache[K, V, I]) load(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	r.mu.Lock()
	started := r.epoch[key]
	r.mu.Unlock()

	res, err, _ := r.group.Do(string(key), func() (any, error) {
		value, err := r.fn(ctx, input)
		if err != nil {
			return value, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.epoch[key] == started {
			r.cache.Set(ctx, key, value, ttl)
		}
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	value, ok := res.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("read-through %v: unexpected value type %T", key, res)
	}
	return value, nil
}
