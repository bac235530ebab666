// Package observability provides Prometheus metrics for the fee tooling.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "feescope"

// Metrics holds the collectors used across commands.
type Metrics struct {
	// Data source
	SubgraphRequests *prometheus.CounterVec
	SubgraphLatency  *prometheus.HistogramVec
	SubgraphRetries  prometheus.Counter

	// Reconstruction
	PositionsReconstructed *prometheus.CounterVec
	DaysReconstructed      prometheus.Counter
	CarryEvents            *prometheus.CounterVec
	EstimatesUnavailable   prometheus.Counter
	TickCacheLookups       *prometheus.CounterVec

	// Contract calls
	RPCCallLatency *prometheus.HistogramVec

	// Storage
	RowsWritten *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		SubgraphRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "requests_total",
			Help:      "Subgraph requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		SubgraphLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "request_duration_seconds",
			Help:      "Subgraph request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		SubgraphRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "retries_total",
			Help:      "Subgraph request retries",
		}),
		PositionsReconstructed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconstruct",
			Name:      "positions_total",
			Help:      "Positions reconstructed by outcome",
		}, []string{"outcome"}),
		DaysReconstructed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconstruct",
			Name:      "days_total",
			Help:      "Pool days reconstructed",
		}),
		CarryEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconstruct",
			Name:      "carry_events_total",
			Help:      "Amounts withheld or released by the carry correction",
		}, []string{"kind"}),
		EstimatesUnavailable: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimate",
			Name:      "unavailable_total",
			Help:      "Fee estimates rejected for inverted or unresolved ranges",
		}),
		TickCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconstruct",
			Name:      "tick_cache_lookups_total",
			Help:      "Tick history cache lookups by result",
		}, []string{"result"}),
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Contract call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "rows_written_total",
			Help:      "Rows written by sink and table",
		}, []string{"sink", "table"}),
		registry: reg,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. An empty addr disables the endpoint.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// ObserveSince records the time elapsed since start on a histogram child.
func ObserveSince(h *prometheus.HistogramVec, label string, start time.Time) {
	if h == nil {
		return
	}
	h.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

// The recorders below accept a nil receiver so components can run without metrics.

// SubgraphRequest records one subgraph request.
func (m *Metrics) SubgraphRequest(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.SubgraphRequests.WithLabelValues(operation, outcome).Inc()
	ObserveSince(m.SubgraphLatency, operation, start)
}

// SubgraphRetry counts one retried subgraph request.
func (m *Metrics) SubgraphRetry() {
	if m == nil {
		return
	}
	m.SubgraphRetries.Inc()
}

// PositionDone records a finished position reconstruction.
func (m *Metrics) PositionDone(outcome string, days int) {
	if m == nil {
		return
	}
	m.PositionsReconstructed.WithLabelValues(outcome).Inc()
	m.DaysReconstructed.Add(float64(days))
}

// Carry counts carry corrections of one kind.
func (m *Metrics) Carry(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CarryEvents.WithLabelValues(kind).Add(float64(n))
}

// EstimateUnavailable counts a rejected estimate.
func (m *Metrics) EstimateUnavailable() {
	if m == nil {
		return
	}
	m.EstimatesUnavailable.Inc()
}

// TickCache counts a tick history cache lookup.
func (m *Metrics) TickCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TickCacheLookups.WithLabelValues(result).Inc()
}

// RPCCall records one contract call.
func (m *Metrics) RPCCall(method string, start time.Time) {
	if m == nil {
		return
	}
	ObserveSince(m.RPCCallLatency, method, start)
}

// Rows counts rows written to a sink.
func (m *Metrics) Rows(sink, table string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsWritten.WithLabelValues(sink, table).Add(float64(n))
}
