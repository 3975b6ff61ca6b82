package reference

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/courier/internal/config"
)

// RedisCache stores reference documents in Redis with a fixed TTL
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var ErrCacheAddrRequired = errors.New("cache address is required")

// NewRedisCache connects a RedisCache using the cache configuration
func NewRedisCache(cfg config.CacheConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, ErrCacheAddrRequired
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

// Get returns ErrCacheMiss for absent or expired keys
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.keyFor(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	return c.client.Set(ctx, c.keyFor(key), data, c.ttl).Err()
}

// Ping checks that Redis is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) keyFor(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}
