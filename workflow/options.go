package workflow

import (
	"time"

	"github.com/ssoriche/prioflow/workflow/store"
)

// defaultPacingInterval mirrors the original prototype's asyncio.sleep(2):
// the simulated per-step work duration that also doubles as the sole
// cancellation point.
const defaultPacingInterval = 2 * time.Second

// defaultPollInterval mirrors the original prototype's asyncio.sleep(0.1)
// idle-poll when the queue is empty.
const defaultPollInterval = 100 * time.Millisecond

// Option configures an Engine, following the functional-option pattern from
// the teacher's graph.Option.
type Option func(*Engine)

// WithCheckpointStore attaches the durable store the engine saves to and
// resumes from. An engine with no store never checkpoints and Execute
// always starts at step 0.
func WithCheckpointStore(s store.CheckpointStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithPacingInterval overrides the mandatory per-step yield duration.
// Production code leaves this at its 2s default; tests shrink it to
// milliseconds so scenario suites run quickly while still exercising the
// cancellation point.
func WithPacingInterval(d time.Duration) Option {
	return func(e *Engine) { e.pacingInterval = d }
}

// WithEngineMetrics attaches a Metrics collector. A nil Metrics (the
// default) means no metrics are recorded.
func WithEngineMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// ConsumerOption configures a Consumer, following the same pattern.
type ConsumerOption func(*Consumer)

// WithPreemptive toggles whether Publish cancels an in-flight, lower
// priority task. Default false.
func WithPreemptive(preemptive bool) ConsumerOption {
	return func(c *Consumer) { c.preemptive = preemptive }
}

// WithPollInterval overrides how long the consumer sleeps between checks of
// an empty heap.
func WithPollInterval(d time.Duration) ConsumerOption {
	return func(c *Consumer) { c.pollInterval = d }
}

// WithConsumerMetrics attaches a Metrics collector to the consumer loop.
func WithConsumerMetrics(m *Metrics) ConsumerOption {
	return func(c *Consumer) { c.metrics = m }
}
