package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const settingKeyPrefix = "setting:"

// SettingCache is a best-effort Redis cache in front of the settings
// table. Cache failures are logged and treated as misses; the store
// stays the source of truth.
type SettingCache struct {
	redis  *Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewSettingCache wraps the Redis client for setting lookups.
func NewSettingCache(r *Redis, ttl time.Duration, logger *zap.Logger) *SettingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SettingCache{redis: r, ttl: ttl, logger: logger}
}

// Get returns the cached value for a setting key, if present.
func (c *SettingCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return "", false
	}
	val, err := c.redis.Client.Get(ctx, settingKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("setting cache read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores a setting value with the configured TTL.
func (c *SettingCache) Set(ctx context.Context, key, value string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Set(ctx, settingKeyPrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("setting cache write failed", zap.String("key", key), zap.Error(err))
	}
}
