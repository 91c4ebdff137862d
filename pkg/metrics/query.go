package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ogsoda"

// QueryMetrics records timings and outcomes of the reporting queries
// (agent and daily order summaries, dashboard counts).
type QueryMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewQueryMetrics registers the query metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	if reg == nil {
		return &QueryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "query_duration_seconds",
		Help:      "Duration of reporting queries in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "query_success_total",
		Help:      "Successful reporting queries.",
	}, []string{"query"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "query_failure_total",
		Help:      "Failed reporting queries.",
	}, []string{"query"})
	reg.MustRegister(duration, success, failure)
	return &QueryMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records one execution of the named query.
func (q *QueryMetrics) Observe(query string, started time.Time, err error) {
	if q == nil || q.duration == nil {
		return
	}
	label := normalizeLabel(query)
	q.duration.WithLabelValues(label).Observe(time.Since(started).Seconds())
	if err != nil {
		q.failure.WithLabelValues(label).Inc()
		return
	}
	q.success.WithLabelValues(label).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
