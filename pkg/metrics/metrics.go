// Package metrics exposes Prometheus metrics for diagram rendering and the
// live editing server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Render Metrics
	RedrawsTotal      prometheus.Counter
	RedrawDuration    prometheus.Histogram
	SkippedEdgesTotal prometheus.Counter
	DiagramNodes      prometheus.Gauge
	DiagramEdges      prometheus.Gauge

	// Store Metrics
	MutationsTotal *prometheus.CounterVec

	// Server Metrics
	WSClients       prometheus.Gauge
	WSCommandsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initRenderMetrics()
	r.initServerMetrics()
	return r
}

func (r *Registry) initRenderMetrics() {
	r.RedrawsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodegraph_redraws_total",
			Help: "Total number of full diagram redraws",
		},
	)

	r.RedrawDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodegraph_redraw_duration_seconds",
			Help:    "Duration of full diagram redraws in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	r.SkippedEdgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodegraph_skipped_edges_total",
			Help: "Edges skipped during redraw because a label did not resolve",
		},
	)

	r.DiagramNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodegraph_nodes",
			Help: "Nodes drawn in the last redraw",
		},
	)

	r.DiagramEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodegraph_edges",
			Help: "Edges drawn in the last redraw",
		},
	)

	r.MutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodegraph_mutations_total",
			Help: "Total number of diagram mutations",
		},
		[]string{"op"}, // add_node, move_node, remove_node, add_edge, remove_edge
	)
}

func (r *Registry) initServerMetrics() {
	r.WSClients = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodegraph_ws_clients",
			Help: "Connected websocket clients",
		},
	)

	r.WSCommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodegraph_ws_commands_total",
			Help: "Websocket commands received",
		},
		[]string{"type", "status"}, // status: ok, error
	)
}

// RecordRedraw records a completed redraw
func (r *Registry) RecordRedraw(duration time.Duration, nodes, edges, skipped int) {
	r.RedrawsTotal.Inc()
	r.RedrawDuration.Observe(duration.Seconds())
	r.DiagramNodes.Set(float64(nodes))
	r.DiagramEdges.Set(float64(edges))
	r.SkippedEdgesTotal.Add(float64(skipped))
}

// RecordMutation counts one store mutation
func (r *Registry) RecordMutation(op string) {
	r.MutationsTotal.WithLabelValues(op).Inc()
}

// RecordCommand counts one websocket command
func (r *Registry) RecordCommand(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.WSCommandsTotal.WithLabelValues(kind, status).Inc()
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
