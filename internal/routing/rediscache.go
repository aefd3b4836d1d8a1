package routing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisCoordKeyPrefix = "shuttle:coords:"

// RedisCoordinateCache is a CoordinateCache backed by Redis, for deployments
// that want geocode memoization shared across instances. Entries expire
// instead of being evicted by count.
type RedisCoordinateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCoordinateCache creates a Redis-backed coordinate cache.
func NewRedisCoordinateCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCoordinateCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCoordinateCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached coordinates for an address.
func (c *RedisCoordinateCache) Get(ctx context.Context, address string) (LatLng, bool) {
	raw, err := c.client.Get(ctx, redisCoordKeyPrefix+address).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("coordinate cache read failed", zap.Error(err))
		}
		return LatLng{}, false
	}

	var coords LatLng
	if err := json.Unmarshal(raw, &coords); err != nil {
		c.logger.Warn("coordinate cache entry corrupt", zap.String("address", address), zap.Error(err))
		return LatLng{}, false
	}
	return coords, true
}

// Set stores coordinates for an address with the configured TTL.
func (c *RedisCoordinateCache) Set(ctx context.Context, address string, coords LatLng) {
	raw, err := json.Marshal(coords)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisCoordKeyPrefix+address, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("coordinate cache write failed", zap.Error(err))
	}
}
