package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts storage adapter calls by backend, operation and outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialsphere_store_operations_total",
		Help: "Total number of storage operations by backend, operation and outcome",
	}, []string{"backend", "operation", "outcome"})

	// StoreLatency records storage operation latency.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialsphere_store_latency_seconds",
		Help:    "Storage operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// StoreConflicts counts optimistic-concurrency retries.
	StoreConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialsphere_store_conflicts_total",
		Help: "Total number of read-modify-write attempts that lost a race and were retried",
	}, []string{"backend"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialsphere_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AIRequests counts AI gateway calls by operation and outcome.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialsphere_ai_requests_total",
		Help: "Total number of AI gateway requests by operation and outcome",
	}, []string{"operation", "outcome"})

	// AILatency records AI backend latency per operation.
	AILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialsphere_ai_latency_seconds",
		Help:    "AI backend call latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"operation"})

	// ModerationFailOpen counts posts allowed because moderation was unavailable.
	ModerationFailOpen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialsphere_moderation_fail_open_total",
		Help: "Total number of moderation checks allowed because the AI backend failed",
	})

	// PostsRejected counts posts blocked by moderation.
	PostsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialsphere_posts_rejected_total",
		Help: "Total number of posts rejected by content moderation",
	})
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeConflict = "conflict"
)

// TrackStore returns a function that records a store operation when called (e.g. defer).
func TrackStore(backend, operation string) func(err *error) {
	start := time.Now()
	return func(err *error) {
		StoreLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
		outcome := OutcomeSuccess
		if err != nil && *err != nil {
			outcome = OutcomeError
		}
		StoreOperations.WithLabelValues(backend, operation, outcome).Inc()
	}
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the process-wide fiber Prometheus middleware. The
// collectors live in the default registry, so they are created once.
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}
