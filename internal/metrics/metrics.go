// Package metrics provides Prometheus metrics for chunkforge
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document outcomes.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
	StatusFailed      = "failed"
)

// Metrics holds all Prometheus metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal      *prometheus.CounterVec
	ChunksTotal         *prometheus.CounterVec
	SegmentDuration     *prometheus.HistogramVec
	ConfigWarningsTotal prometheus.Counter
	CacheHitsTotal      prometheus.Counter
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunkforge_documents_total",
				Help: "Documents processed, by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		ChunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunkforge_chunks_total",
				Help: "Chunks produced, by mode",
			},
			[]string{"mode"},
		),
		SegmentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chunkforge_segment_duration_seconds",
				Help:    "Time spent segmenting one document",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"mode"},
		),
		ConfigWarningsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chunkforge_config_warnings_total",
				Help: "Segmentation configs adjusted during validation",
			},
		),
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chunkforge_cache_hits_total",
				Help: "Segmentations served from the result cache",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
