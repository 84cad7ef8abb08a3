// Package metrics exposes Prometheus instrumentation for the detection
// pipeline and the HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the detector service.
type Metrics struct {
	registry *prometheus.Registry

	UploadsTotal    prometheus.Counter
	LoadErrorsTotal prometheus.Counter
	DetectionsTotal *prometheus.CounterVec // labels: pattern, outcome
	DetectionDur    prometheus.Histogram
	RenderDur       prometheus.Histogram
	DownloadsTotal  prometheus.Counter
	ActiveSessions  prometheus.Gauge
	WSClients       prometheus.Gauge
}

// New builds all metrics on a private registry so callers can construct the
// set more than once without duplicate-registration panics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "detector_uploads_total",
			Help: "CSV datasets accepted by the loader",
		}),
		LoadErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "detector_load_errors_total",
			Help: "Datasets rejected by the loader",
		}),
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "detector_detections_total",
			Help: "Detection runs by pattern and outcome",
		}, []string{"pattern", "outcome"}),
		DetectionDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "detector_detection_duration_seconds",
			Help:    "Detection latency over the full dataset",
			Buckets: prometheus.DefBuckets,
		}),
		RenderDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "detector_render_duration_seconds",
			Help:    "Chart render latency",
			Buckets: prometheus.DefBuckets,
		}),
		DownloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "detector_downloads_total",
			Help: "Chart PNG downloads served",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "detector_active_sessions",
			Help: "Sessions currently held in memory",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "detector_ws_clients",
			Help: "Connected dashboard websocket clients",
		}),
	}

	m.registry.MustRegister(
		m.UploadsTotal,
		m.LoadErrorsTotal,
		m.DetectionsTotal,
		m.DetectionDur,
		m.RenderDur,
		m.DownloadsTotal,
		m.ActiveSessions,
		m.WSClients,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDetection records one detection run.
func (m *Metrics) ObserveDetection(pattern string, found bool, seconds float64) {
	outcome := "not_found"
	if found {
		outcome = "found"
	}
	m.DetectionsTotal.WithLabelValues(pattern, outcome).Inc()
	m.DetectionDur.Observe(seconds)
}
