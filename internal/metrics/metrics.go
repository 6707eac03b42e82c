// Package metrics exposes Prometheus instrumentation for the embedding service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry, so tests can
// create instances without duplicate-registration conflicts.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal *prometheus.CounterVec
	EmbedDuration *prometheus.HistogramVec
	BatchSize     prometheus.Histogram
}

// New creates the service metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vektor_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		EmbedDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vektor_embed_duration_seconds",
			Help:    "Embedding computation time by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vektor_batch_size",
			Help:    "Number of texts per batch request.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
