package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects run metrics for production monitoring, all
// namespaced with "linesim":
//
//   - engines_active (gauge): units currently moving through the line.
//   - engines_completed_total (counter): units finished.
//   - cycle_time_minutes (histogram): per-unit cycle time.
//   - task_segments_total (counter, label event_type): NORMAL and REWORK
//     segments executed.
//   - task_duration_minutes (histogram): sampled task segment durations.
//   - wait_minutes (histogram): resource wait spans before a task could run.
//   - rest_minutes (histogram): worker rest period lengths.
//   - sim_duration_minutes (gauge): the final simulated clock of the last
//     completed run.
//
// All durations are simulated minutes, not wall time. A single collector can
// be shared across sequential runs (the comparison engine does this); the
// counters then accumulate across the pair.
//
// Expose via HTTP for scraping:
//
//	registry := prometheus.NewRegistry()
//	metrics := sim.NewPrometheusMetrics(registry)
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type PrometheusMetrics struct {
	enginesActive    prometheus.Gauge
	enginesCompleted prometheus.Counter
	cycleTime        prometheus.Histogram
	taskSegments     *prometheus.CounterVec
	taskDuration     prometheus.Histogram
	waitMinutes      prometheus.Histogram
	restMinutes      prometheus.Histogram
	simDuration      prometheus.Gauge
}

// NewPrometheusMetrics creates and registers the run metrics with the given
// registry. Pass nil to use the default registerer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		enginesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "linesim",
			Name:      "engines_active",
			Help:      "Product units currently moving through the line",
		}),
		enginesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linesim",
			Name:      "engines_completed_total",
			Help:      "Product units that completed every step",
		}),
		cycleTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linesim",
			Name:      "cycle_time_minutes",
			Help:      "Per-unit cycle time in simulated minutes",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
		taskSegments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linesim",
			Name:      "task_segments_total",
			Help:      "Task segments executed, by closing event type",
		}, []string{"event_type"}),
		taskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linesim",
			Name:      "task_duration_minutes",
			Help:      "Sampled task segment durations in simulated minutes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		waitMinutes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linesim",
			Name:      "wait_minutes",
			Help:      "Resource wait spans before a task could run, in simulated minutes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		restMinutes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linesim",
			Name:      "rest_minutes",
			Help:      "Worker rest period lengths in simulated minutes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		simDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "linesim",
			Name:      "sim_duration_minutes",
			Help:      "Final simulated clock of the last completed run",
		}),
	}
}

// EngineStarted records a unit entering the line.
func (m *PrometheusMetrics) EngineStarted() {
	m.enginesActive.Inc()
}

// EngineCompleted records a unit finishing, with its cycle time.
func (m *PrometheusMetrics) EngineCompleted(cycleTime float64) {
	m.enginesActive.Dec()
	m.enginesCompleted.Inc()
	m.cycleTime.Observe(cycleTime)
}

// RecordTask records one executed task segment.
func (m *PrometheusMetrics) RecordTask(eventType EventType, duration float64) {
	m.taskSegments.WithLabelValues(string(eventType)).Inc()
	m.taskDuration.Observe(duration)
}

// RecordWait records a resource wait span.
func (m *PrometheusMetrics) RecordWait(minutes float64) {
	m.waitMinutes.Observe(minutes)
}

// RecordRest records a worker rest period.
func (m *PrometheusMetrics) RecordRest(minutes float64) {
	m.restMinutes.Observe(minutes)
}

// SetSimDuration records the run's final simulated clock.
func (m *PrometheusMetrics) SetSimDuration(minutes float64) {
	m.simDuration.Set(minutes)
}
