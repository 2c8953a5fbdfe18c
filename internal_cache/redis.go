package internal_cache

import (
	"time"

	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/redislib"
)

type RedisCache struct {
	redis      *redislib.Connection
	expiration time.Duration
}

func NewRedisCache(redis *redislib.Connection, conf config.CacheConfig) *RedisCache {
	return &RedisCache{redis: redis, expiration: time.Duration(conf.TrackedMinutes) * time.Minute}
}

func (c *RedisCache) Stop() {
	// the connection is owned by the caller
}

func (c *RedisCache) GetDescriptor(ctx rcontext.RequestContext, id string, fetch FetchFunction) ([]byte, error) {
	b, err := c.redis.TryGetDescriptor(ctx, id)
	if err != nil {
		ctx.Log.Warn("Error reading descriptor from redis, falling back to storage: ", err)
	} else if b != nil {
		return b, nil
	}

	b, err = fetch()
	if err != nil {
		return nil, err
	}
	if err = c.redis.StoreDescriptor(ctx, id, b, c.expiration); err != nil {
		ctx.Log.Debug("Not populating descriptor cache due to error: ", err)
	}
	return b, nil
}
