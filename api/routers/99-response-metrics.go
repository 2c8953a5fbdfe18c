package routers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/transfer-repo/metrics"
)

type MetricsResponseRouter struct {
	next http.Handler
}

func NewMetricsResponseRouter(next http.Handler) *MetricsResponseRouter {
	return &MetricsResponseRouter{next: next}
}

func (m *MetricsResponseRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	metrics.HttpResponses.With(prometheus.Labels{
		"host":       r.Host,
		"action":     GetActionName(r),
		"method":     r.Method,
		"statusCode": strconv.Itoa(GetStatusCode(r)),
	}).Inc()
	if start := GetStartTime(r); !start.IsZero() {
		metrics.HttpResponseTime.With(prometheus.Labels{
			"host":   r.Host,
			"action": GetActionName(r),
			"method": r.Method,
		}).Observe(time.Since(start).Seconds())
	}

	if m.next != nil {
		m.next.ServeHTTP(w, r)
	}
}
