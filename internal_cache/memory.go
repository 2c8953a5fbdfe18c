package internal_cache

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
)

type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(conf config.CacheConfig) *MemoryCache {
	trackedMinutes := time.Duration(conf.TrackedMinutes) * time.Minute
	cleanupMinutes := time.Duration(conf.CleanupMinutes) * time.Minute
	memCache := &MemoryCache{
		cache: cache.New(trackedMinutes, cleanupMinutes),
	}

	metrics.OnBeforeMetricsRequested(func() {
		metrics.CacheNumItems.With(prometheus.Labels{"cache": "descriptor"}).Set(float64(memCache.cache.ItemCount()))
	})

	return memCache
}

func (c *MemoryCache) Stop() {
	c.cache.Flush()
}

func (c *MemoryCache) GetDescriptor(ctx rcontext.RequestContext, id string, fetch FetchFunction) ([]byte, error) {
	if v, ok := c.cache.Get(id); ok {
		metrics.CacheHits.With(prometheus.Labels{"cache": "descriptor"}).Inc()
		return v.([]byte), nil
	}
	metrics.CacheMisses.With(prometheus.Labels{"cache": "descriptor"}).Inc()

	b, err := fetch()
	if err != nil {
		return nil, err
	}
	c.cache.Set(id, b, cache.DefaultExpiration)
	return b, nil
}
