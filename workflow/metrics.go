package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus-compatible observability for the scheduler,
// adapted from the teacher's graph.PrometheusMetrics. All metrics are
// namespaced "prioflow".
type Metrics struct {
	QueueDepth       prometheus.Gauge
	Preemptions      prometheus.Counter
	MessagesStarted  *prometheus.CounterVec // labels: workflow_name, priority
	MessagesComplete *prometheus.CounterVec // labels: workflow_name, priority
	MessagesFailed   *prometheus.CounterVec // labels: workflow_name, priority
	MessagesRequeued *prometheus.CounterVec // labels: workflow_name
	StepLatency      *prometheus.HistogramVec // labels: workflow_name, step_name
	CheckpointSaves  prometheus.Counter
	CheckpointLoads  prometheus.Counter
}

// NewMetrics registers the full metric set with registry. A nil registry
// uses prometheus.DefaultRegisterer, matching the teacher's convention.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prioflow",
			Name:      "queue_depth",
			Help:      "Number of messages currently waiting in the priority heap",
		}),
		Preemptions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "preemptions_total",
			Help:      "Number of times Publish cancelled an in-flight lower-priority workflow",
		}),
		MessagesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "messages_started_total",
			Help:      "Messages dispatched to an engine by the consumer loop",
		}, []string{"workflow_name", "priority"}),
		MessagesComplete: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "messages_completed_total",
			Help:      "Messages that ran to completion",
		}, []string{"workflow_name", "priority"}),
		MessagesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "messages_failed_total",
			Help:      "Messages dropped after a non-cancellation error",
		}, []string{"workflow_name", "priority"}),
		MessagesRequeued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "messages_requeued_total",
			Help:      "Messages re-pushed onto the heap after preemption",
		}, []string{"workflow_name"}),
		StepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prioflow",
			Name:      "step_latency_seconds",
			Help:      "Wall-clock time spent in the pacing yield plus step body, per step",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow_name", "step_name"}),
		CheckpointSaves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "checkpoint_saves_total",
			Help:      "CheckpointStore.Save calls issued by the engine",
		}),
		CheckpointLoads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "prioflow",
			Name:      "checkpoint_loads_total",
			Help:      "CheckpointStore.Load calls issued by the engine",
		}),
	}
}

func (m *Metrics) recordStepLatency(workflowName, stepName string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepLatency.WithLabelValues(workflowName, stepName).Observe(d.Seconds())
}
