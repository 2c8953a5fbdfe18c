package redislib

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
)

const descriptorKeyPrefix = "transfer:"

// StoreDescriptor caches the raw descriptor document for a transfer.
func (c *Connection) StoreDescriptor(ctx rcontext.RequestContext, id string, raw []byte, expiration time.Duration) error {
	if !c.available() {
		return nil
	}

	return c.ring.ForEachShard(ctx.Context, func(ctx2 context.Context, client *redis.Client) error {
		return client.Set(ctx2, descriptorKeyPrefix+id, raw, expiration).Err()
	})
}

// TryGetDescriptor returns nil on a cache miss.
func (c *Connection) TryGetDescriptor(ctx rcontext.RequestContext, id string) ([]byte, error) {
	if !c.available() {
		return nil, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Context, 20*time.Second)
	defer cancel()

	b, err := c.ring.Get(timeoutCtx, descriptorKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMisses.With(prometheus.Labels{"cache": "redis_descriptor"}).Inc()
			return nil, nil
		}
		return nil, err
	}
	metrics.CacheHits.With(prometheus.Labels{"cache": "redis_descriptor"}).Inc()
	return b, nil
}
