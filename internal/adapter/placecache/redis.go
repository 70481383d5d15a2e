package placecache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

// Key prefix is versioned so a detail-shape change can roll the cache.
const redisKeyPrefix = "place_detail_v1:"

// Redis caches place details in Redis with a TTL. Redis failures degrade to
// cache misses; the discovery path never fails because of the cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis-backed place-detail cache.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (c *Redis) Get(ctx context.Context, key string) (domain.PlaceDetail, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("place cache get failed", "key", key, "error", err)
		}
		return domain.PlaceDetail{}, false
	}

	var detail domain.PlaceDetail
	if err := json.Unmarshal([]byte(data), &detail); err != nil {
		c.logger.Warn("place cache entry corrupt", "key", key, "error", err)
		return domain.PlaceDetail{}, false
	}
	return detail, true
}

func (c *Redis) Put(ctx context.Context, key string, detail domain.PlaceDetail) {
	data, err := json.Marshal(detail)
	if err != nil {
		c.logger.Warn("place cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("place cache put failed", "key", key, "error", err)
	}
}
