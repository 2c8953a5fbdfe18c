package internal_cache

import (
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/redislib"
)

// FetchFunction loads the raw descriptor from its source of truth on a cache miss.
type FetchFunction func() ([]byte, error)

// DescriptorCache fronts reads of transfer descriptors. Descriptors never change once written,
// so entries are never invalidated, only expired. Fetch errors are returned and never cached.
type DescriptorCache interface {
	Stop()
	GetDescriptor(ctx rcontext.RequestContext, id string, fetch FetchFunction) ([]byte, error)
}

func New(conf config.CacheConfig, redis *redislib.Connection) DescriptorCache {
	if !conf.Enabled {
		logrus.Warn("Cache is disabled - setting up a dummy instance")
		return NewNoopCache()
	}
	if redis != nil {
		logrus.Info("Setting up Redis descriptor cache")
		return NewRedisCache(redis, conf)
	}
	logrus.Info("Setting up in-memory descriptor cache")
	return NewMemoryCache(conf)
}
