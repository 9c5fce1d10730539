package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlobCleanupTotal counts blob cleanup attempts by outcome
	// (deleted, missing, failed, unresolved).
	BlobCleanupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantas_blob_cleanup_total",
		Help: "Total number of blob cleanup attempts by outcome",
	}, []string{"outcome"})

	// ClassifierLatency records inference call latency by result.
	ClassifierLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plantas_classifier_latency_seconds",
		Help:    "Classification gateway latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	// CacheRequests counts reference-data cache lookups by result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantas_cache_requests_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantas_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AnalysesPurged counts rows removed permanently, by trigger.
	AnalysesPurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantas_analyses_purged_total",
		Help: "Total number of analysis records removed permanently",
	}, []string{"trigger"})
)

// ObserveClassifier records the latency of a classifier call started at start.
func ObserveClassifier(result string, start time.Time) {
	ClassifierLatency.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
