package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "pathminer"

// Task status label values.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusTimedOut = "timed_out"
)

// Metrics are the scheduler's Prometheus collectors.
type Metrics struct {
	Tasks      *prometheus.CounterVec
	Duration   prometheus.Histogram
	QueueDepth prometheus.Gauge
	Features   prometheus.Counter
}

// NewMetrics registers the scheduler collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Tasks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "tasks_total",
			Help:      "Extraction tasks by final status",
		}, []string{"status"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "task_duration_seconds",
			Help:      "Wall-clock time per extraction task",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "queue_depth",
			Help:      "Files submitted and not yet picked up by a worker",
		}),
		Features: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "features_total",
			Help:      "Program features written to the output",
		}),
	}
}
