package redislib

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

const urlKeyPrefix = "s3url:"

func (c *Connection) StoreURL(ctx rcontext.RequestContext, cacheKey string, url string, expiration time.Duration) error {
	if !c.available() {
		return nil
	}

	if err := c.ring.ForEachShard(ctx.Context, func(ctx2 context.Context, client *redis.Client) error {
		res := client.Set(ctx2, urlKeyPrefix+cacheKey, url, expiration)
		return res.Err()
	}); err != nil {
		if delErr := c.DeleteURL(ctx, cacheKey); delErr != nil {
			ctx.Log.Warn("Error while attempting to clean up url cache during another error: ", delErr)
			sentry.CaptureException(delErr)
		}
		return err
	}

	return nil
}

// TryGetURL returns an empty string on a cache miss.
func (c *Connection) TryGetURL(ctx rcontext.RequestContext, cacheKey string) (string, error) {
	if !c.available() {
		return "", nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Context, 20*time.Second)
	defer cancel()

	ctx.Log.Debugf("Getting cached url for %s", urlKeyPrefix+cacheKey)
	s, err := c.ring.Get(timeoutCtx, urlKeyPrefix+cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}

	return s, nil
}

func (c *Connection) DeleteURL(ctx rcontext.RequestContext, cacheKey string) error {
	if !c.available() {
		return nil
	}

	return c.ring.ForEachShard(ctx.Context, func(ctx2 context.Context, client *redis.Client) error {
		return client.Del(ctx2, urlKeyPrefix+cacheKey).Err()
	})
}
