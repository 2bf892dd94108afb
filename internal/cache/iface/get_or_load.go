package cache

import (
	"context"
	"encoding/json"
	"time"

	"karmahub/internal/logger"
)

// LoadFunc produces the value for a key on a cache miss
type LoadFunc[T any] func(ctx context.Context) (T, error)

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for ttl. Cache failures are logged and fall through to load.
func GetOrLoad[T any](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	load LoadFunc[T],
	log logger.Logger,
) (T, error) {
	raw, err := c.Get(ctx, key)
	if err == nil {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
		log.Warn("discarding undecodable cache entry",
			logger.String("key", key))
	} else if !IsCacheMiss(err) {
		log.Warn("cache read failed, loading from source",
			logger.String("key", key),
			logger.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warn("failed to encode value for cache",
			logger.String("key", key),
			logger.Error(err))
		return value, nil
	}

	if err := c.Set(ctx, key, string(encoded), ttl); err != nil {
		log.Warn("cache write failed",
			logger.String("key", key),
			logger.Error(err))
	}

	return value, nil
}
