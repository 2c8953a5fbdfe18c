package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRunsBeforeHooks(t *testing.T) {
	called := 0
	OnBeforeMetricsRequested(func() {
		called++
		CacheNumItems.WithLabelValues("test").Set(3)
	})

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 1, called)
	assert.Equal(t, float64(3), testutil.ToFloat64(CacheNumItems.WithLabelValues("test")))
	assert.Contains(t, w.Body.String(), "transfer_cache_num_items")
}
