package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dataset pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RunsTotal       *prometheus.CounterVec // labels: outcome={success,failure}
	RunDuration     prometheus.Histogram
	LastSuccess     prometheus.Gauge

	// Input metrics.
	RecordsLoaded  *prometheus.CounterVec   // labels: dataset={recipes,worship,population,counties,states}
	RecordsSkipped *prometheus.CounterVec   // labels: dataset, reason
	SourceFetch    *prometheus.HistogramVec // labels: scheme={file,http,s3}

	// Output metrics.
	DatasetRecords   *prometheus.GaugeVec // labels: dataset={recipe_nodes,recipe_links,county_metrics}
	MessagesProduced prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all pipeline metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vizdata_etl",
			Name:      "pipeline_running",
			Help:      "1 while the pipeline scheduler is active, 0 when shut down.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vizdata_etl",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vizdata_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-derive-publish run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vizdata_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		RecordsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vizdata_etl",
			Name:      "records_loaded_total",
			Help:      "Input records parsed, by dataset.",
		}, []string{"dataset"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vizdata_etl",
			Name:      "records_skipped_total",
			Help:      "Input records dropped at the parse boundary, by dataset and reason.",
		}, []string{"dataset", "reason"}),
		SourceFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vizdata_etl",
			Name:      "source_fetch_duration_seconds",
			Help:      "Time to open an input source, by URI scheme.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"scheme"}),
		DatasetRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vizdata_etl",
			Name:      "dataset_records",
			Help:      "Records in the latest published snapshot, by dataset.",
		}, []string{"dataset"}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vizdata_etl",
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
	}

	reg.MustRegister(
		m.PipelineRunning,
		m.RunsTotal,
		m.RunDuration,
		m.LastSuccess,
		m.RecordsLoaded,
		m.RecordsSkipped,
		m.SourceFetch,
		m.DatasetRecords,
		m.MessagesProduced,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}
