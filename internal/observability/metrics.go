package observability

import (
	"github.com/couchcryptid/forecast-alert-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forecast_alerts"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	ForecastsConsumed prometheus.Counter
	ForecastsProduced prometheus.Counter
	TransformErrors   prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Annotation metrics.
	DaysAnnotated prometheus.Counter
	AlertsRaised  *prometheus.CounterVec // labels: type, level

	// Forecast source metrics.
	SourceRequests *prometheus.CounterVec   // labels: source={file,http}, outcome={success,error}
	SourceDuration *prometheus.HistogramVec // labels: source
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.ForecastsConsumed,
		m.ForecastsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DaysAnnotated,
		m.AlertsRaised,
		m.SourceRequests,
		m.SourceDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		ForecastsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_consumed_total",
			Help:      help("Total forecast runs read from the source topic."),
		}),
		ForecastsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_produced_total",
			Help:      help("Total annotated forecast reports written to the sink topic."),
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      help("Total forecast runs rejected during parsing or annotation."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of forecast runs per batch extracted from Kafka."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch extract-annotate-load cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DaysAnnotated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_annotated_total",
			Help:      help("Total forecast days run through the rule engine."),
		}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      help("Resolved alerts attached to forecast days, by type and level."),
		}, []string{"type", "level"}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      help("Forecast source fetches by source and outcome."),
		}, []string{"source", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      help("Forecast source fetch duration in seconds."),
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
	}
}

// ObserveAnnotations records the days processed and the alerts resolved for
// one annotation run.
func (m *Metrics) ObserveAnnotations(records []domain.EnrichedDayRecord) {
	m.DaysAnnotated.Add(float64(len(records)))
	for _, r := range records {
		if r.Alert == nil {
			continue
		}
		m.AlertsRaised.WithLabelValues(string(r.Alert.Type), r.Alert.Level.String()).Inc()
	}
}
