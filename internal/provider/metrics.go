package provider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments provider fetches and cache lookups.
type Metrics struct {
	lookups  *prometheus.CounterVec
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the provider collectors. A nil registerer yields nil,
// which disables instrumentation.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return nil
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_provider_cache_lookups_total",
		Help: "Provider cache lookups partitioned by query and result.",
	}, []string{"query", "result"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_provider_fetches_total",
		Help: "Upstream fetches partitioned by query and status.",
	}, []string{"query", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shelf_provider_fetch_duration_seconds",
		Help:    "Duration in seconds of upstream fetches.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})
	registerer.MustRegister(lookups, fetches, duration)
	return &Metrics{lookups: lookups, fetches: fetches, duration: duration}
}

func (m *Metrics) lookup(key, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(key, result).Inc()
}

func (m *Metrics) fetched(key string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.fetches.WithLabelValues(key, status).Inc()
	m.duration.WithLabelValues(key).Observe(time.Since(start).Seconds())
}
