package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 5 * time.Minute
	pingTimeout     = 5 * time.Second
	scanBatchSize   = 100
)

func newRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func ttlFromConfig(cfg config.CacheConfig) time.Duration {
	if cfg.ProductTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(cfg.ProductTTLSeconds) * time.Second
}

// redisOptions prefers REDIS_URL and falls back to host/port settings.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func deleteKeysWithPrefix(ctx context.Context, client redis.UniversalClient, prefix string) error {
	iter := client.Scan(ctx, 0, prefix+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
	}
	return nil
}
