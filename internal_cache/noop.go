package internal_cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
)

type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) Stop() {
	// do nothing
}

func (n *NoopCache) GetDescriptor(ctx rcontext.RequestContext, id string, fetch FetchFunction) ([]byte, error) {
	metrics.CacheMisses.With(prometheus.Labels{"cache": "descriptor"}).Inc()
	return fetch()
}
