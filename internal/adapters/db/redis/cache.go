package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scanBatch = 100

// Cache implements repo.Cache on top of a go-redis client.
// Reads never return errors: faults are logged and reported as a miss.
type Cache struct {
	client     redis.UniversalClient
	log        *zap.Logger
	defaultTTL time.Duration
}

func NewCache(client redis.UniversalClient, log *zap.Logger, defaultTTL time.Duration) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{client: client, log: log, defaultTTL: defaultTTL}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false
	case err != nil:
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return "", false
	default:
		return val, true
	}
}

// Set stores value under key. A non-positive ttl falls back to the default TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		c.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

// DeletePattern removes every key matching pattern using SCAN, never KEYS.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			c.log.Warn("cache scan failed", zap.String("pattern", pattern), zap.Error(err))
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.log.Warn("cache delete failed", zap.String("pattern", pattern), zap.Error(err))
				return deleted, err
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *Cache) Equal(ctx context.Context, key, value string) bool {
	stored, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(value)) == 1
}

// Ping is used by health checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
