package datastores

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
)

// URLCache is satisfied by *redislib.Connection.
type URLCache interface {
	StoreURL(ctx rcontext.RequestContext, cacheKey string, url string, expiration time.Duration) error
	TryGetURL(ctx rcontext.RequestContext, cacheKey string) (string, error)
}

type cachingDatastore struct {
	Datastore
	cache    URLCache
	cacheTtl time.Duration
}

// WithPresignCache reuses download URLs for up to cacheTtl, and never for more than half of the
// requested lifetime so that a cache hit always has time left on it.
func WithPresignCache(ds Datastore, cache URLCache, cacheTtl time.Duration) Datastore {
	if cache == nil || cacheTtl <= 0 {
		return ds
	}
	return &cachingDatastore{Datastore: ds, cache: cache, cacheTtl: cacheTtl}
}

func (c *cachingDatastore) PresignDownload(ctx rcontext.RequestContext, key string, ttl time.Duration, downloadFilename string) (string, error) {
	cacheKey := key + "|" + ttl.String() + "|" + downloadFilename
	url, err := c.cache.TryGetURL(ctx, cacheKey)
	if err != nil {
		ctx.Log.Debug("Unable to fetch url from cache due to error: ", err)
	}
	if url != "" && err == nil {
		ctx.Log.Debug("Using cached presigned url for: ", key)
		metrics.CacheHits.With(prometheus.Labels{"cache": "presigned_url"}).Inc()
		return url, nil
	}
	metrics.CacheMisses.With(prometheus.Labels{"cache": "presigned_url"}).Inc()

	url, err = c.Datastore.PresignDownload(ctx, key, ttl, downloadFilename)
	if err != nil {
		return "", err
	}

	keep := c.cacheTtl
	if keep > ttl/2 {
		keep = ttl / 2
	}
	if keep > 0 {
		ctx.Log.Debug("Caching presigned url for: ", key)
		if err = c.cache.StoreURL(ctx, cacheKey, url, keep); err != nil {
			ctx.Log.Debug("Not populating url cache due to error: ", err)
		}
	}
	return url, nil
}
