package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	cache "karmahub/internal/cache/iface"
	"karmahub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) cache.Cache {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	log, err := logger.NewZapLoggerForDev()
	require.NoError(t, err)
	c, err := NewRedisCache(Options{Addr: "localhost:6379", KeyPrefix: "karmahub:test:"}, log)
	require.NoError(t, err)
	return c
}

func TestBasicOperations(t *testing.T) {
	c := setupCache(t)
	defer c.Close()

	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		key := "basic:key1"
		value := "test-value"

		err := c.Set(ctx, key, value, 0)
		require.NoError(t, err)

		result, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, result)

		c.Delete(ctx, key)
	})

	t.Run("Set with TTL", func(t *testing.T) {
		key := "basic:key2"

		err := c.Set(ctx, key, "test-value-with-ttl", 2*time.Second)
		require.NoError(t, err)

		_, err = c.Get(ctx, key)
		require.NoError(t, err)

		time.Sleep(3 * time.Second)

		_, err = c.Get(ctx, key)
		assert.True(t, cache.IsCacheMiss(err))
	})

	t.Run("Delete", func(t *testing.T) {
		key := "basic:key3"

		err := c.Set(ctx, key, "test-value-delete", 0)
		require.NoError(t, err)

		err = c.Delete(ctx, key)
		require.NoError(t, err)

		_, err = c.Get(ctx, key)
		assert.True(t, cache.IsCacheMiss(err))
	})
}

func TestProfileGetOrLoad(t *testing.T) {
	c := setupCache(t)
	defer c.Close()

	ctx := context.Background()
	key := "profile:user-1"
	defer c.Delete(ctx, key)

	type profile struct {
		UserID      string `json:"user_id"`
		KarmaPoints int    `json:"karma_points"`
	}

	loads := 0
	load := func(ctx context.Context) (profile, error) {
		loads++
		return profile{UserID: "user-1", KarmaPoints: 10}, nil
	}

	for i := 0; i < 3; i++ {
		p, err := cache.GetOrLoad(ctx, c, key, time.Minute, load, logger.NewNopLogger())
		require.NoError(t, err)
		assert.Equal(t, 10, p.KarmaPoints)
	}
	assert.Equal(t, 1, loads)

	_, err := cache.GetOrLoad(ctx, c, "profile:missing", time.Minute, func(ctx context.Context) (profile, error) {
		return profile{}, errors.New("store down")
	}, logger.NewNopLogger())
	assert.Error(t, err)
}
