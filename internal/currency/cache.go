package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/richxcame/pos-pricing/pkg/redis"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "rates:store:"

// RedisCache keeps JSON snapshots of rate stores in Redis. Cache failures are
// logged and treated as misses so pricing never depends on Redis being up.
type RedisCache struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewRedisCache creates a cache with the given entry TTL
func NewRedisCache(client goredis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey returns the Redis key holding owner's snapshot
func CacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("%s%s", cacheKeyPrefix, ownerID)
}

// Get returns the cached snapshot for owner
func (c *RedisCache) Get(ctx context.Context, ownerID uuid.UUID) (*RateStore, bool) {
	var store RateStore
	found, err := redis.GetJSON(ctx, c.client, CacheKey(ownerID), &store)
	if err != nil {
		rateCacheTotal.WithLabelValues("error").Inc()
		logger.WithContext(ctx).Warn("rate cache read failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, false
	}
	if !found {
		rateCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	rateCacheTotal.WithLabelValues("hit").Inc()
	return &store, true
}

// Set stores a snapshot of store
func (c *RedisCache) Set(ctx context.Context, store *RateStore) {
	if err := redis.SetJSON(ctx, c.client, CacheKey(store.OwnerID), store, c.ttl); err != nil {
		logger.WithContext(ctx).Warn("rate cache write failed",
			zap.String("owner_id", store.OwnerID.String()),
			zap.Error(err),
		)
	}
}

// Invalidate drops owner's snapshot
func (c *RedisCache) Invalidate(ctx context.Context, ownerID uuid.UUID) {
	if err := redis.Delete(ctx, c.client, CacheKey(ownerID)); err != nil {
		logger.WithContext(ctx).Warn("rate cache invalidation failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
	}
}
