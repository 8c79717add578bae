package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the engine's prometheus collectors.
type Metrics struct {
	FetchAttempts  *prometheus.CounterVec
	FetchFailures  *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	ItemsCollected *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
	TopicsDetected prometheus.Counter
}

// NewMetrics registers the engine collectors on reg. Pass a fresh
// registry in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_fetch_attempts_total",
			Help: "Fetch tasks issued, by platform.",
		}, []string{"platform"}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_fetch_failures_total",
			Help: "Fetch tasks that failed, by platform and reason.",
		}, []string{"platform", "reason"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendscope_fetch_duration_seconds",
			Help:    "Wall time of fetch tasks, by platform.",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform"}),
		ItemsCollected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_items_collected_total",
			Help: "Raw items collected, by platform.",
		}, []string{"platform"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_runs_total",
			Help: "Analysis runs, by outcome status.",
		}, []string{"status"}),
		TopicsDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "trendscope_topics_detected_total",
			Help: "Validated topics produced across all runs.",
		}),
	}
}
