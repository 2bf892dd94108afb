package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	cache "karmahub/internal/cache/iface"
	"karmahub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := NewMemoryCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	clock.Advance(time.Minute)

	_, err = c.Get(ctx, "k")
	assert.True(t, cache.IsCacheMiss(err))

	require.NoError(t, c.Set(ctx, "forever", "v", 0))
	clock.Advance(24 * time.Hour)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestGetOrLoad(t *testing.T) {
	type profile struct {
		UserID string  `json:"user_id"`
		Rating float64 `json:"rating"`
	}

	ctx := context.Background()
	log := logger.NewNopLogger()

	t.Run("populates once per ttl", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		c := NewMemoryCacheWithClock(clock.Now)

		loads := 0
		load := func(ctx context.Context) (profile, error) {
			loads++
			return profile{UserID: "u1", Rating: 4.5}, nil
		}

		for i := 0; i < 5; i++ {
			p, err := cache.GetOrLoad(ctx, c, "profile:u1", 60*time.Second, load, log)
			require.NoError(t, err)
			assert.Equal(t, 4.5, p.Rating)
		}
		assert.Equal(t, 1, loads)

		clock.Advance(61 * time.Second)

		_, err := cache.GetOrLoad(ctx, c, "profile:u1", 60*time.Second, load, log)
		require.NoError(t, err)
		assert.Equal(t, 2, loads)
	})

	t.Run("invalidation forces reload", func(t *testing.T) {
		c := NewMemoryCache()

		rating := 3.0
		loads := 0
		load := func(ctx context.Context) (profile, error) {
			loads++
			return profile{UserID: "u2", Rating: rating}, nil
		}

		p, err := cache.GetOrLoad(ctx, c, "profile:u2", time.Minute, load, log)
		require.NoError(t, err)
		assert.Equal(t, 3.0, p.Rating)

		rating = 5.0
		require.NoError(t, c.Delete(ctx, "profile:u2"))

		p, err = cache.GetOrLoad(ctx, c, "profile:u2", time.Minute, load, log)
		require.NoError(t, err)
		assert.Equal(t, 5.0, p.Rating)
		assert.Equal(t, 2, loads)
	})

	t.Run("load error is returned and not cached", func(t *testing.T) {
		c := NewMemoryCache()

		_, err := cache.GetOrLoad(ctx, c, "profile:u3", time.Minute, func(ctx context.Context) (profile, error) {
			return profile{}, errors.New("store down")
		}, log)
		require.Error(t, err)

		_, err = c.Get(ctx, "profile:u3")
		assert.True(t, cache.IsCacheMiss(err))
	})
}
