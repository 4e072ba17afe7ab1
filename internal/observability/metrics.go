package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the sightings service.
type Metrics struct {
	SightingsRecorded prometheus.Counter
	StoreErrors       prometheus.Counter
	WriteRateLimited  prometheus.Counter
	PublishErrors     prometheus.Counter

	// Session and filter metrics.
	ActiveSessions      prometheus.Gauge
	SourceFetchFailures prometheus.Counter
	FilterEvaluations   *prometheus.CounterVec // labels: mode={recompute,frozen}
	FilterDuration      prometheus.Histogram
	FilterResultSize    prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SightingsRecorded,
		m.StoreErrors,
		m.WriteRateLimited,
		m.PublishErrors,
		m.ActiveSessions,
		m.SourceFetchFailures,
		m.FilterEvaluations,
		m.FilterDuration,
		m.FilterResultSize,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SightingsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings",
			Name:      "recorded_total",
			Help:      "Total sightings stored through the /api endpoint.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings",
			Name:      "store_errors_total",
			Help:      "Total repository read or write failures.",
		}),
		WriteRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings",
			Name:      "write_rate_limited_total",
			Help:      "Total write requests rejected by the rate limiter.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings",
			Name:      "publish_errors_total",
			Help:      "Total failures publishing recorded sightings to Kafka.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sightings",
			Name:      "active_sessions",
			Help:      "Number of open map sessions.",
		}),
		SourceFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sightings",
			Name:      "source_fetch_failures_total",
			Help:      "Session loads that fell back to an empty collection.",
		}),
		FilterEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sightings",
			Name:      "filter_evaluations_total",
			Help:      "Filter evaluations by severity mode.",
		}, []string{"mode"}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sightings",
			Name:      "filter_duration_seconds",
			Help:      "Duration of a filter evaluation including severity classification.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		FilterResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sightings",
			Name:      "filter_result_size",
			Help:      "Number of sightings left after a filter evaluation.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
	}
}
