package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for cache operations
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// Close connection
	Close() error
}

// IsCacheMiss checks if an error indicates a missing key
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
