package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// discovery service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec   // labels: endpoint, status
	RequestDuration *prometheus.HistogramVec // labels: endpoint

	// Provider call metrics.
	ProviderRequests *prometheus.CounterVec   // labels: method={search,details}, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: method={search,details}
	DetailDrops      prometheus.Counter
	PlaceCache       *prometheus.CounterVec // labels: result={hit,miss}

	ResultSize prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dish_discovery",
			Name:      "requests_total",
			Help:      "API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dish_discovery",
			Name:      "request_duration_seconds",
			Help:      "End-to-end API request duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dish_discovery",
			Name:      "provider_requests_total",
			Help:      "Google Places API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dish_discovery",
			Name:      "provider_request_duration_seconds",
			Help:      "Google Places API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		DetailDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dish_discovery",
			Name:      "detail_drops_total",
			Help:      "Places dropped from results because their detail lookup failed.",
		}),
		PlaceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dish_discovery",
			Name:      "place_cache_total",
			Help:      "Place-detail cache lookups by result.",
		}, []string{"result"}),
		ResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dish_discovery",
			Name:      "result_size",
			Help:      "Number of dish media items per discovery response.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 40},
		}),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ProviderRequests,
		m.ProviderDuration,
		m.DetailDrops,
		m.PlaceCache,
		m.ResultSize,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RequestsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dish_discovery", Name: "requests_total"}, []string{"endpoint", "status"}),
		RequestDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "dish_discovery", Name: "request_duration_seconds"}, []string{"endpoint"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dish_discovery", Name: "provider_requests_total"}, []string{"method", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "dish_discovery", Name: "provider_request_duration_seconds"}, []string{"method"}),
		DetailDrops:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dish_discovery", Name: "detail_drops_total"}),
		PlaceCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dish_discovery", Name: "place_cache_total"}, []string{"result"}),
		ResultSize:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dish_discovery", Name: "result_size"}),
	}
}
