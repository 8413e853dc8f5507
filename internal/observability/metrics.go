// Package observability defines the Prometheus metrics exported by geolayer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geolayer"

// Metrics holds the counters and histograms recorded by the layer service
// and the weather client.
type Metrics struct {
	// Correlation outcomes. labels: outcome={ok,insufficient_data,incompatible_granularity,error}
	Correlations *prometheus.CounterVec

	// Spatial join passes.
	SpatialJoinDuration prometheus.Histogram
	SpatialJoinRegions  prometheus.Histogram

	// Rankings and color passes. labels: view={ranking,colors}
	Views *prometheus.CounterVec

	// Weather upstream. labels: outcome={success,error}
	WeatherRequests    *prometheus.CounterVec
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		Correlations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlations_total",
			Help:      "Correlation requests by outcome.",
		}, []string{"outcome"}),
		SpatialJoinDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spatial_join_duration_seconds",
			Help:      "Duration of one nearest-sample join pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SpatialJoinRegions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spatial_join_regions",
			Help:      "Number of regions assigned per join pass.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000},
		}),
		Views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_total",
			Help:      "Ranking and color views rendered.",
		}, []string{"view"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Open-Meteo grid requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather response cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Open-Meteo request duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// NewMetrics creates the metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Correlations,
		m.SpatialJoinDuration,
		m.SpatialJoinRegions,
		m.Views,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build
// several without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
