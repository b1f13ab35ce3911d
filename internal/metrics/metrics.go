package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the arbitrage analysis pipeline.
type Metrics struct {
	// Graph construction
	GraphBuildLatency prometheus.Histogram
	GraphCurrencies   prometheus.Gauge
	GraphEdges        prometheus.Gauge

	// SCC partitioning
	SCCLatency       prometheus.Histogram
	ComponentsFound  prometheus.Gauge
	IsolatedVertices prometheus.Gauge

	// Cycle search
	CycleSearchLatency prometheus.Histogram
	CyclesFound        prometheus.Counter

	// Sizing
	SizingLatency prometheus.Histogram

	// Outcomes, by status label (spec.md §6's five fixed outcomes)
	AnalysesTotal *prometheus.CounterVec

	// Full pipeline
	AnalysisLatency prometheus.Histogram

	server *http.Server
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		GraphBuildLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arb_graph_build_seconds",
				Help:    "Time to enumerate pairs and build the weighted matrix",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),
		GraphCurrencies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arb_graph_currencies",
				Help: "Number of currencies (vertices) in the most recent matrix",
			},
		),
		GraphEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arb_graph_edges",
				Help: "Number of directed edges (two per listed pair) in the most recent matrix",
			},
		),
		SCCLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arb_scc_latency_seconds",
				Help:    "Time to partition the matrix into strongly connected components",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		ComponentsFound: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arb_scc_components",
				Help: "Number of components of size >= 3 found in the most recent partition",
			},
		),
		IsolatedVertices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arb_scc_isolated_vertices",
				Help: "Number of vertices segregated as isolated (component size <= 2)",
			},
		),
		CycleSearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arb_cycle_search_seconds",
				Help:    "Time to run Bellman-Ford negative-cycle search across all components",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		CyclesFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arb_cycles_found_total",
				Help: "Total number of negative cycles found",
			},
		),
		SizingLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arb_sizing_latency_seconds",
				Help:    "Time to run the sizer's raw/lot/notional/profit pipeline",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arb_analyses_total",
				Help: "Total number of analyses, labeled by terminal status",
			},
			[]string{"status"},
		),
		AnalysisLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arb_analysis_latency_seconds",
				Help:    "Full pipeline latency from graph build through sizing",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),
	}

	prometheus.MustRegister(
		m.GraphBuildLatency,
		m.GraphCurrencies,
		m.GraphEdges,
		m.SCCLatency,
		m.ComponentsFound,
		m.IsolatedVertices,
		m.CycleSearchLatency,
		m.CyclesFound,
		m.SizingLatency,
		m.AnalysesTotal,
		m.AnalysisLatency,
	)

	return m
}

// StartServer starts the HTTP server for Prometheus metrics.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Info().Int("port", port).Str("path", path).Msg("starting metrics server")
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	return nil
}

// Shutdown gracefully stops the metrics server.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server != nil {
		return m.server.Shutdown(ctx)
	}
	return nil
}

// RecordGraphBuild records graph-construction latency and size.
func (m *Metrics) RecordGraphBuild(d time.Duration, currencies, edges int) {
	m.GraphBuildLatency.Observe(d.Seconds())
	m.GraphCurrencies.Set(float64(currencies))
	m.GraphEdges.Set(float64(edges))
}

// RecordSCC records SCC-partitioning latency and component counts.
func (m *Metrics) RecordSCC(d time.Duration, components, isolated int) {
	m.SCCLatency.Observe(d.Seconds())
	m.ComponentsFound.Set(float64(components))
	m.IsolatedVertices.Set(float64(isolated))
}

// RecordCycleSearch records cycle-search latency and increments the
// cycles-found counter if a witness cycle was returned.
func (m *Metrics) RecordCycleSearch(d time.Duration, found bool) {
	m.CycleSearchLatency.Observe(d.Seconds())
	if found {
		m.CyclesFound.Inc()
	}
}

// RecordSizing records sizing-pipeline latency.
func (m *Metrics) RecordSizing(d time.Duration) {
	m.SizingLatency.Observe(d.Seconds())
}

// RecordAnalysis records one full analysis outcome.
func (m *Metrics) RecordAnalysis(d time.Duration, status string) {
	m.AnalysisLatency.Observe(d.Seconds())
	m.AnalysesTotal.WithLabelValues(status).Inc()
}
