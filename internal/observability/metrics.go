package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_fusion"

// Metrics holds the Prometheus counters, histograms, and gauges for the fusion service.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Fusion metrics.
	Corrections *prometheus.CounterVec // labels: rule
	Reliability *prometheus.CounterVec // labels: level={low,medium,high,none}

	// Enhancement metrics.
	Enhancements     *prometheus.CounterVec // labels: outcome={cache_hit,generated,duplicate,stale,failed,disabled}
	EnhanceCache     *prometheus.CounterVec // labels: result={hit,miss,error}
	TextgenRequests  *prometheus.CounterVec // labels: outcome={success,error,rejected}
	TextgenDuration  prometheus.Histogram
	CacheSwept       prometheus.Counter
	EnhanceEnabled   prometheus.Gauge
	ErrorsReported   *prometheus.CounterVec // labels: service
	ActiveSessions   prometheus.Gauge
	EnhanceDebounced prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_total",
			Help:      "Weather code corrections by the rule that changed the code.",
		}, []string{"rule"}),
		Reliability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reliability_total",
			Help:      "Reliability scores by level.",
		}, []string{"level"}),
		Enhancements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhancements_total",
			Help:      "Advisory enhancement attempts by outcome.",
		}, []string{"outcome"}),
		EnhanceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhance_cache_total",
			Help:      "Enhancement cache lookups by result.",
		}, []string{"result"}),
		TextgenRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "textgen_requests_total",
			Help:      "Text-generation proxy requests by outcome.",
		}, []string{"outcome"}),
		TextgenDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "textgen_duration_seconds",
			Help:      "Text-generation proxy request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		CacheSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_swept_total",
			Help:      "Cache entries removed by the periodic sweep.",
		}),
		EnhanceEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enhance_enabled",
			Help:      "1 when AI advisory enhancement is enabled, 0 otherwise.",
		}),
		ErrorsReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_reported_total",
			Help:      "Errors sent to the telemetry reporter by service.",
		}, []string{"service"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enhance_sessions",
			Help:      "Locations with an enhancement session.",
		}),
		EnhanceDebounced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhance_debounced_total",
			Help:      "Pending enhancements superseded or cancelled before their debounce fired.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Corrections,
		m.Reliability,
		m.Enhancements,
		m.EnhanceCache,
		m.TextgenRequests,
		m.TextgenDuration,
		m.CacheSwept,
		m.EnhanceEnabled,
		m.ErrorsReported,
		m.ActiveSessions,
		m.EnhanceDebounced,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
