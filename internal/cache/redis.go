package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinematch/cinematch/internal/config"
	"github.com/redis/go-redis/v9"
)

// ResultTTL bounds how long a completed-session payload stays cached.
// Results are immutable, the TTL only caps memory usage.
const ResultTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForSessionResult generates the Redis key holding the completed-status
// payload of a match session. Only terminal sessions are cached: a VOTING
// session must always be read from the store so a fresh match is observed
// on the next poll.
func (c *RedisCache) KeyForSessionResult(sessionID uint64) string {
	return fmt.Sprintf("match:result:%d", sessionID)
}

// GetSessionResult returns the cached completed-status payload, or "" on miss.
func (c *RedisCache) GetSessionResult(ctx context.Context, sessionID uint64) (string, error) {
	val, err := c.Client.Get(ctx, c.KeyForSessionResult(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // cache miss
	} else if err != nil {
		return "", err
	}
	return val, nil
}

// SetSessionResult stores the completed-status payload with ResultTTL.
func (c *RedisCache) SetSessionResult(ctx context.Context, sessionID uint64, payload string) error {
	return c.Client.Set(ctx, c.KeyForSessionResult(sessionID), payload, ResultTTL).Err()
}
