package cache

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	c, err := NewProductCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, &domain.Product{ID: 1, Name: "Laptop"}))
	p, hit, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, p)
	assert.NoError(t, c.Invalidate(ctx, 1))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product:42", productKey(42))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisPassword: "secret", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://cache.internal:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = redisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestTTLFromConfig(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, ttlFromConfig(config.CacheConfig{}))
	assert.Equal(t, 30*time.Second, ttlFromConfig(config.CacheConfig{ProductTTLSeconds: 30}))
}
