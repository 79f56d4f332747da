package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL run.
type Metrics struct {
	RowsConsolidated *prometheus.CounterVec // labels: entity={city,station,statement}
	RowsAggregated   *prometheus.CounterVec // labels: table={dim_city,dim_station,fact_station_statement}
	SourceErrors     *prometheus.CounterVec // labels: source={cities,paris,nantes}
	FactRowsDropped  prometheus.Counter
	PhaseDuration    *prometheus.HistogramVec // labels: phase={ingest,consolidate,aggregate}
	PipelineRunning  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsConsolidated,
		m.RowsAggregated,
		m.SourceErrors,
		m.FactRowsDropped,
		m.PhaseDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsConsolidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mobility_etl",
			Name:      "rows_consolidated_total",
			Help:      "Canonical rows written to the consolidated history, by entity kind.",
		}, []string{"entity"}),
		RowsAggregated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mobility_etl",
			Name:      "rows_aggregated_total",
			Help:      "Rows written to dimension and fact tables, by table.",
		}, []string{"table"}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mobility_etl",
			Name:      "source_errors_total",
			Help:      "Failed adapter invocations, by source feed.",
		}, []string{"source"}),
		FactRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mobility_etl",
			Name:      "fact_rows_dropped_total",
			Help:      "Statements dropped by the fact build for lack of a matching station or city.",
		}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mobility_etl",
			Name:      "phase_duration_seconds",
			Help:      "Duration of each pipeline phase.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"phase"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mobility_etl",
			Name:      "pipeline_running",
			Help:      "1 while an ETL run is in progress, 0 otherwise.",
		}),
	}
}
