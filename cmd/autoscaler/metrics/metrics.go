// Package metrics provides Prometheus metrics instrumentation for the
// autoscaler.
//
// It exposes operational metrics about the control loop, the forecast
// model, and scaling actions. All metrics are exposed via the /metrics HTTP
// endpoint for Prometheus scraping.
//
// Metrics exposed:
//   - scalecast_iterations_total: Counter of control loop iterations
//   - scalecast_iteration_duration_seconds: Histogram of iteration durations
//   - scalecast_signal_errors_total: Counter of signal query failures by signal
//   - scalecast_training_runs_total: Counter of model training runs
//   - scalecast_composite_score: Gauge of the latest observed composite score
//   - scalecast_predicted_score: Gauge of the latest predicted composite score
//   - scalecast_target_replicas: Gauge of current replicas by target
//   - scalecast_scale_events_total: Counter of applied scalings by target and direction
//   - scalecast_actuation_errors_total: Counter of actuation failures by target
//   - scalecast_cooldown_denials_total: Counter of scalings blocked by the cooldown gate
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	IterationsTotal   prometheus.Counter
	IterationDuration prometheus.Histogram
	SignalErrors      *prometheus.CounterVec
	TrainingRuns      prometheus.Counter
	CompositeScore    prometheus.Gauge
	PredictedScore    prometheus.Gauge
	TargetReplicas    *prometheus.GaugeVec
	ScaleEvents       *prometheus.CounterVec
	ActuationErrors   *prometheus.CounterVec
	CooldownDenials   prometheus.Counter
}

// New registers the autoscaler metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the autoscaler metrics with reg. Used by tests
// to avoid duplicate registration on the default registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IterationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "scalecast_iterations_total",
			Help: "Total number of control loop iterations",
		}),

		IterationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scalecast_iteration_duration_seconds",
			Help:    "Duration of control loop iterations",
			Buckets: prometheus.DefBuckets,
		}),

		SignalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scalecast_signal_errors_total",
			Help: "Total number of signal query failures by signal",
		}, []string{"signal"}),

		TrainingRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "scalecast_training_runs_total",
			Help: "Total number of forecast model training runs",
		}),

		CompositeScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scalecast_composite_score",
			Help: "Latest observed composite load score",
		}),

		PredictedScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scalecast_predicted_score",
			Help: "Latest predicted composite load score",
		}),

		TargetReplicas: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scalecast_target_replicas",
			Help: "Current replicas by scaling target",
		}, []string{"target"}),

		ScaleEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scalecast_scale_events_total",
			Help: "Total number of applied scalings by target and direction",
		}, []string{"target", "direction"}),

		ActuationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scalecast_actuation_errors_total",
			Help: "Total number of actuation failures by target",
		}, []string{"target"}),

		CooldownDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "scalecast_cooldown_denials_total",
			Help: "Total number of scalings blocked by the cooldown gate",
		}),
	}
}

func (m *Metrics) RecordIteration(seconds float64) {
	m.IterationsTotal.Inc()
	m.IterationDuration.Observe(seconds)
}

func (m *Metrics) RecordSignalError(signal string) {
	m.SignalErrors.WithLabelValues(signal).Inc()
}

func (m *Metrics) RecordTrainingRun() {
	m.TrainingRuns.Inc()
}

func (m *Metrics) SetCompositeScore(score float64) {
	m.CompositeScore.Set(score)
}

func (m *Metrics) SetPredictedScore(score float64) {
	m.PredictedScore.Set(score)
}

func (m *Metrics) SetTargetReplicas(target string, replicas int) {
	m.TargetReplicas.WithLabelValues(target).Set(float64(replicas))
}

func (m *Metrics) RecordScaleEvent(target, direction string) {
	m.ScaleEvents.WithLabelValues(target, direction).Inc()
}

func (m *Metrics) RecordActuationError(target string) {
	m.ActuationErrors.WithLabelValues(target).Inc()
}

func (m *Metrics) RecordCooldownDenial() {
	m.CooldownDenials.Inc()
}
