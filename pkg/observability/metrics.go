package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides Prometheus metrics collection for exploration operations
type Metrics struct {
	fetchesTotal      *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	staleDiscards     *prometheus.CounterVec
	layoutRunsTotal   prometheus.Counter
	layoutSettles     prometheus.Counter
	cameraMoves       *prometheus.CounterVec
	gesturesTotal     *prometheus.CounterVec
	graphSize         *prometheus.GaugeVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	wsClients         prometheus.Gauge
	registry          *prometheus.Registry
}

// NewMetrics creates a metrics collector backed by its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_fetches_total",
			Help: "Total number of graph fetches by kind and status",
		},
		[]string{"kind", "status"},
	)

	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_fetch_duration_seconds",
			Help:    "Duration of graph fetches by kind",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"kind"},
	)

	staleDiscards := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_stale_discards_total",
			Help: "Total number of fetch results discarded as stale, by kind",
		},
		[]string{"kind"},
	)

	layoutRunsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_layout_runs_total",
			Help: "Total number of layout runs started",
		},
	)

	layoutSettles := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_layout_settles_total",
			Help: "Total number of settled layout results received",
		},
	)

	cameraMoves := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_camera_moves_total",
			Help: "Total number of camera commands issued, by operation",
		},
		[]string{"op"},
	)

	gesturesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_gestures_total",
			Help: "Total number of resolved pointer gestures, by kind",
		},
		[]string{"gesture"},
	)

	graphSize := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "explorer_graph_size",
			Help: "Current number of loaded graph elements by kind",
		},
		[]string{"kind"},
	)

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method and path",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"method", "path"},
	)

	wsClients := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_ws_clients",
			Help: "Current number of connected event stream clients",
		},
	)

	registry.MustRegister(
		fetchesTotal,
		fetchDuration,
		staleDiscards,
		layoutRunsTotal,
		layoutSettles,
		cameraMoves,
		gesturesTotal,
		graphSize,
		httpRequestsTotal,
		httpDuration,
		wsClients,
	)

	return &Metrics{
		fetchesTotal:      fetchesTotal,
		fetchDuration:     fetchDuration,
		staleDiscards:     staleDiscards,
		layoutRunsTotal:   layoutRunsTotal,
		layoutSettles:     layoutSettles,
		cameraMoves:       cameraMoves,
		gesturesTotal:     gesturesTotal,
		graphSize:         graphSize,
		httpRequestsTotal: httpRequestsTotal,
		httpDuration:      httpDuration,
		wsClients:         wsClients,
		registry:          registry,
	}
}

// RecordFetch records the completion of a graph fetch
func (m *Metrics) RecordFetch(kind, status string, duration time.Duration) {
	m.fetchesTotal.WithLabelValues(kind, status).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStaleDiscard records a fetch result discarded as stale
func (m *Metrics) RecordStaleDiscard(kind string) {
	m.staleDiscards.WithLabelValues(kind).Inc()
}

// RecordLayoutRun records the start of a layout run
func (m *Metrics) RecordLayoutRun() {
	m.layoutRunsTotal.Inc()
}

// RecordLayoutSettle records a settled layout result
func (m *Metrics) RecordLayoutSettle() {
	m.layoutSettles.Inc()
}

// RecordCameraMove records an issued camera command
func (m *Metrics) RecordCameraMove(op string) {
	m.cameraMoves.WithLabelValues(op).Inc()
}

// RecordGesture records a resolved pointer gesture
func (m *Metrics) RecordGesture(gesture string) {
	m.gesturesTotal.WithLabelValues(gesture).Inc()
}

// SetGraphSize sets the current loaded node and edge counts
func (m *Metrics) SetGraphSize(nodes, edges int) {
	m.graphSize.WithLabelValues("nodes").Set(float64(nodes))
	m.graphSize.WithLabelValues("edges").Set(float64(edges))
}

// RecordHTTPRequest records one served HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// WSClientConnected adjusts the connected client gauge upward
func (m *Metrics) WSClientConnected() { m.wsClients.Inc() }

// WSClientDisconnected adjusts the connected client gauge downward
func (m *Metrics) WSClientDisconnected() { m.wsClients.Dec() }

// Registry returns the Prometheus registry for HTTP exposure
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
