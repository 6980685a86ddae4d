package cache

import (
	"context"
	"errors"
	"log/slog"
)

// GetOrLoad serves key from c, falling back to load on a miss and populating
// the cache with the result. Cache backend failures are logged and never fail
// the read; loader errors are returned unchanged and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		slog.Debug("cache hit", "key", key)
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("cache read failed, loading from store", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Set(ctx, key, value); err != nil {
		slog.Warn("cache populate failed", "key", key, "error", err)
	}

	return value, nil
}

// Invalidate removes keys from c. The write that triggered it has already
// been committed, so a backend failure is logged rather than returned.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		slog.Error("cache invalidation failed", "keys", keys, "error", err)
	}
}
