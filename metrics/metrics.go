package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_http_requests_total",
}, []string{"host", "action", "method"})
var InvalidHttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_invalid_http_requests_total",
}, []string{"action", "method"})
var HttpResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_http_responses_total",
}, []string{"host", "action", "method", "statusCode"})
var HttpResponseTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "transfer_http_response_time_seconds",
}, []string{"host", "action", "method"})
var CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_cache_hits_total",
}, []string{"cache"})
var CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_cache_misses_total",
}, []string{"cache"})
var CacheNumItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "transfer_cache_num_items",
}, []string{"cache"})
var S3Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_s3_operations_total",
}, []string{"driver", "operation"})
var TransfersCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_created_total",
}, []string{"sender_kind"})
var TransferBytesAnnounced = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "transfer_announced_size_bytes",
	Buckets: prometheus.ExponentialBuckets(1024, 8, 9), // 1 KiB through 16 GiB
})
var TransfersResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_resolved_total",
}, []string{"result"})
var TransfersConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "transfer_confirmed_total",
})
var NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "transfer_notifications_total",
}, []string{"kind", "result"})
var QueueWorkersRunning = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "transfer_queue_workers_running",
}, []string{"queue"})

func init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(InvalidHttpRequests)
	prometheus.MustRegister(HttpResponses)
	prometheus.MustRegister(HttpResponseTime)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CacheNumItems)
	prometheus.MustRegister(S3Operations)
	prometheus.MustRegister(TransfersCreated)
	prometheus.MustRegister(TransferBytesAnnounced)
	prometheus.MustRegister(TransfersResolved)
	prometheus.MustRegister(TransfersConfirmed)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(QueueWorkersRunning)
}
