package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains Prometheus collectors for deployment runs.
type Metrics struct {
	registry *prometheus.Registry

	// Per-template sync outcomes
	syncActions *prometheus.CounterVec

	// Graph API traffic
	graphRequests *prometheus.CounterVec

	// Run durations
	runDuration prometheus.Histogram

	// Groups created by the resolver
	groupsCreated prometheus.Counter
}

// New creates a Metrics instance with all collectors registered on a
// dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		syncActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capolicy_sync_actions_total",
				Help: "Total number of per-template sync outcomes by action",
			},
			[]string{"action"},
		),

		graphRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capolicy_graph_requests_total",
				Help: "Total number of Graph API requests by method and status class",
			},
			[]string{"method", "status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "capolicy_run_duration_seconds",
				Help:    "Duration of deployment runs in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),

		groupsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capolicy_groups_created_total",
				Help: "Total number of directory groups created by the resolver",
			},
		),
	}

	registry.MustRegister(m.syncActions, m.graphRequests, m.runDuration, m.groupsCreated)
	return m
}

// RecordSyncAction increments the outcome counter for a template sync.
// Action is one of "create", "update", "skip", or "error".
func (m *Metrics) RecordSyncAction(action string) {
	m.syncActions.WithLabelValues(action).Inc()
}

// RecordGraphRequest increments the Graph request counter. Status is a
// status class such as "2xx", "429", or "5xx".
func (m *Metrics) RecordGraphRequest(method, status string) {
	m.graphRequests.WithLabelValues(method, status).Inc()
}

// RecordRunDuration observes the duration of a completed run.
func (m *Metrics) RecordRunDuration(d time.Duration) {
	m.runDuration.Observe(d.Seconds())
}

// RecordGroupCreated increments the created-groups counter.
func (m *Metrics) RecordGroupCreated() {
	m.groupsCreated.Inc()
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves the metrics endpoint in daemon modes.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates an HTTP server exposing the metrics at the given
// address and path.
func NewServer(m *Metrics, address, path string) *Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	return &Server{
		server: &http.Server{
			Addr:         address,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: slog.Default().With("component", "telemetry.metrics"),
	}
}

// Start begins serving the metrics endpoint. It returns immediately; the
// server shuts down when the context is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info("metrics endpoint listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics endpoint failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
}
