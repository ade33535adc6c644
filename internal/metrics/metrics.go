package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CameraCenter = "center"
	CameraFit    = "fit"

	FitScheduled = "scheduled"
	FitCancelled = "cancelled"
	FitIssued    = "issued"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	markersPlaced       prometheus.Counter
	markersRemoved      prometheus.Counter
	markersLive         prometheus.Gauge
	cameraCommands      *prometheus.CounterVec
	viewportFits        *prometheus.CounterVec
	reconcileDuration   prometheus.Histogram
	widgetMounts        prometheus.Counter
}

// New creates a fresh Metrics registry with HTTP and map engine metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iqamahs",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by the inspection API",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "iqamahs",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the inspection API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	markersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "iqamahs",
		Name:      "map_markers_placed_total",
		Help:      "Markers placed on the map widget",
	})

	markersRemoved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "iqamahs",
		Name:      "map_markers_removed_total",
		Help:      "Markers removed from the map widget",
	})

	markersLive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "iqamahs",
		Name:      "map_markers",
		Help:      "Markers currently tracked by the marker registry",
	})

	cameraCommands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iqamahs",
		Name:      "map_camera_commands_total",
		Help:      "Camera commands issued to the map widget",
	}, []string{"command"})

	viewportFits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iqamahs",
		Name:      "map_viewport_fits_total",
		Help:      "Debounced viewport fits by outcome",
	}, []string{"outcome"})

	reconcileDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "iqamahs",
		Name:      "map_reconcile_duration_seconds",
		Help:      "Duration of marker reconciliation passes",
		Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	widgetMounts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "iqamahs",
		Name:      "map_widget_mounts_total",
		Help:      "Map widgets constructed",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		markersPlaced,
		markersRemoved,
		markersLive,
		cameraCommands,
		viewportFits,
		reconcileDuration,
		widgetMounts,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		markersPlaced:       markersPlaced,
		markersRemoved:      markersRemoved,
		markersLive:         markersLive,
		cameraCommands:      cameraCommands,
		viewportFits:        viewportFits,
		reconcileDuration:   reconcileDuration,
		widgetMounts:        widgetMounts,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveReconcile records one reconciliation pass.
func (m *Metrics) ObserveReconcile(added, removed, live int, duration time.Duration) {
	if m == nil {
		return
	}
	m.markersPlaced.Add(float64(added))
	m.markersRemoved.Add(float64(removed))
	m.markersLive.Set(float64(live))
	m.reconcileDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncCameraCommand(command string) {
	if m == nil {
		return
	}
	m.cameraCommands.WithLabelValues(command).Inc()
}

func (m *Metrics) IncViewportFit(outcome string) {
	if m == nil {
		return
	}
	m.viewportFits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncWidgetMount() {
	if m == nil {
		return
	}
	m.widgetMounts.Inc()
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
