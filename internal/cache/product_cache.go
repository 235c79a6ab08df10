package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/redis/go-redis/v9"
)

const productKeyPrefix = "product:"

// ProductCache holds product records read through by the product service.
// Derived analytics are never cached.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*domain.Product, bool, error)
	Set(ctx context.Context, p *domain.Product) error
	Invalidate(ctx context.Context, id int64) error
	InvalidateAll(ctx context.Context) error
}

type redisProductCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

type noopProductCache struct{}

func NewProductCache(cfg config.CacheConfig) (ProductCache, error) {
	if !cfg.Enabled {
		return &noopProductCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisProductCache(client, ttlFromConfig(cfg)), nil
}

// NewRedisProductCache wraps an existing client.
func NewRedisProductCache(client redis.UniversalClient, ttl time.Duration) ProductCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisProductCache{client: client, ttl: ttl}
}

func NewNoopProductCache() ProductCache {
	return &noopProductCache{}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *redisProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	payload, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, false, fmt.Errorf("decode product cache: %w", err)
	}
	return &p, true, nil
}

func (c *redisProductCache) Set(ctx context.Context, p *domain.Product) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product cache: %w", err)
	}
	if err := c.client.Set(ctx, productKey(p.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisProductCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisProductCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, productKeyPrefix)
}

func (c *noopProductCache) Get(context.Context, int64) (*domain.Product, bool, error) {
	return nil, false, nil
}

func (c *noopProductCache) Set(context.Context, *domain.Product) error { return nil }

func (c *noopProductCache) Invalidate(context.Context, int64) error { return nil }

func (c *noopProductCache) InvalidateAll(context.Context) error { return nil }
