package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "karmahub/internal/cache/iface"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache creates a process-local cache with per-key expiry
func NewMemoryCache() cache.Cache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates a memory cache reading time from now
func NewMemoryCacheWithClock(now func() time.Time) cache.Cache {
	return &memoryCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var stored string
	switch v := value.(type) {
	case string:
		stored = v
	case []byte:
		stored = string(v)
	default:
		stored = fmt.Sprint(v)
	}

	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", cache.ErrCacheMiss, key)
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", fmt.Errorf("%w: %s", cache.ErrCacheMiss, key)
	}
	return e.value, nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Close() error {
	return nil
}
