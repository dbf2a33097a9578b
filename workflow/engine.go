package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ssoriche/prioflow/workflow/emit"
	"github.com/ssoriche/prioflow/workflow/store"
)

// tracer is the engine's OTel tracer handle. With no TracerProvider
// registered (otel.SetTracerProvider), the global default is a no-op
// provider and every span below is non-recording, so this is safe whether
// or not a caller has wired a real exporter.
var tracer = otel.Tracer("github.com/ssoriche/prioflow/workflow")

// Engine sequentially drives a fixed, ordered list of steps against one
// Context instance, checkpointing before every step and on pause/failure.
// Adapted from the teacher's graph.Engine sequential Run loop, collapsed
// from generic graph traversal down to a single linear pipeline.
type Engine struct {
	name  string
	steps []NamedStep

	store          store.CheckpointStore
	pacingInterval time.Duration
	metrics        *Metrics
}

// NewEngine constructs an unconfigured Engine. Call Configure before
// Execute.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{pacingInterval: defaultPacingInterval}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configure sets the engine's logical name and its ordered step list. Once
// configured, the list is immutable for the engine's lifetime. steps may be
// empty, in which case Execute is a no-op that returns the context
// unchanged.
func (e *Engine) Configure(name string, steps []NamedStep) {
	e.name = name
	e.steps = steps
}

// Name returns the engine's configured logical name.
func (e *Engine) Name() string { return e.name }

// Execute runs the configured step pipeline against c, starting at
// startStep unless a PAUSED checkpoint for c.ID redirects it. See spec §4.2
// for the full state machine; the numbered steps below mirror the spec's
// enumeration exactly.
func (e *Engine) Execute(ctx context.Context, c *Context, startStep int) (*Context, error) {
	var span oteltrace.Span
	ctx, span = tracer.Start(ctx, "workflow.execute", oteltrace.WithAttributes(
		attribute.String("workflow.name", e.name),
		attribute.String("workflow.id", c.ID),
		attribute.Int("workflow.start_step", startStep),
	))
	defer span.End()
	c.Logger = emit.NewMultiLogger(c.Logger, emit.NewOTelLogger(ctx))

	// 1. Resume discovery.
	if e.store != nil && startStep == 0 {
		cp, err := e.loadCheckpoint(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if cp != nil && cp.State == store.StatePaused {
			startStep = cp.CurrentStep
			for k, v := range cp.ContextData.Data {
				c.Data[k] = v
			}
		}
	}

	// 2. Step loop.
	for i := startStep; i < len(e.steps); i++ {
		step := e.steps[i]

		// a. Pre-step checkpoint.
		if err := e.saveCheckpoint(ctx, &store.Checkpoint{
			WorkflowID:  c.ID,
			CurrentStep: i,
			State:       store.StateRunning,
			ContextData: snapshotData(c),
			Metadata:    map[string]any{"step_name": step.Name},
		}); err != nil {
			return nil, err
		}

		// b. Mandatory pacing yield: the sole cancellation point.
		start := time.Now()
		if err := e.yield(ctx); err != nil {
			// e. Cancellation lands before the body runs, so resume must
			// re-enter at this same step, not the one after it.
			c.Logger.Warn("workflow paused by cancellation", "step_index", i, "step_name", step.Name)
			e.pauseCheckpoint(c, i)
			return nil, ErrCancelled
		}

		// c. Invoke the step.
		next, stepErr := step.Fn(ctx, c)
		e.recordLatency(step.Name, time.Since(start))
		if stepErr != nil {
			// f. Any other failure: best-effort FAIL checkpoint, then
			// re-raise wrapped with the failing index.
			c.Logger.Error("step failed", "step_index", i, "step_name", step.Name, "error", stepErr.Error())
			e.saveCheckpointBestEffort(&store.Checkpoint{
				WorkflowID:  c.ID,
				CurrentStep: i,
				State:       store.StateFailed,
				ContextData: store.ContextData{Data: cloneData(c.Data)},
				Metadata:    map[string]any{"error": stepErr.Error()},
			})
			return nil, &StepFailedError{Step: i, Cause: stepErr}
		}
		c = next
	}

	// 3. Completion: delete checkpoint, return final context.
	if e.store != nil {
		if err := e.store.Delete(ctx, c.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	c.Logger.Info("workflow completed", "workflow_name", e.name, "step_count", len(e.steps))
	return c, nil
}

// yield blocks for the pacing interval or until ctx is done, whichever
// comes first. This is the single point in a step's lifecycle where
// cooperative cancellation can land — mirroring the original prototype's
// asyncio.sleep(2) as both simulated work and cancellation opportunity.
func (e *Engine) yield(ctx context.Context) error {
	timer := time.NewTimer(e.pacingInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snapshotData(c *Context) store.ContextData {
	return store.ContextData{
		Data:    cloneData(c.Data),
		Request: cloneData(c.Request),
	}
}

func (e *Engine) loadCheckpoint(ctx context.Context, workflowID string) (*store.Checkpoint, error) {
	if e.metrics != nil {
		e.metrics.CheckpointLoads.Inc()
	}
	cp, err := e.store.Load(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return cp, nil
}

// saveCheckpoint performs the mandatory pre-step save. Per spec §4.2's
// failure taxonomy, a StoreUnavailable here propagates directly — it is
// not wrapped as StepFailed, since the engine never reached the failure
// checkpoint path for this step.
func (e *Engine) saveCheckpoint(ctx context.Context, cp *store.Checkpoint) error {
	if e.store == nil {
		return nil
	}
	if e.metrics != nil {
		e.metrics.CheckpointSaves.Inc()
	}
	if err := e.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// saveCheckpointBestEffort is used on the FAIL and PAUSE paths, where spec
// §4.2 permits (for FAIL) or requires (for PAUSE, implicitly, since the
// consumer depends on it for resume) writing the checkpoint even though the
// triggering error may itself be a store outage. Errors are swallowed here
// deliberately: the caller's own error (StepFailed or Cancelled) is what
// gets re-raised, matching the spec's "MAY skip that write if the store is
// unreachable" guidance.
func (e *Engine) saveCheckpointBestEffort(cp *store.Checkpoint) {
	if e.store == nil {
		return
	}
	// Use a fresh background context: the caller's ctx may already be
	// cancelled (the pause path) and a checkpoint write must not be
	// aborted by the very cancellation it's recording.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if e.metrics != nil {
		e.metrics.CheckpointSaves.Inc()
	}
	_ = e.store.Save(saveCtx, cp)
}

func (e *Engine) pauseCheckpoint(c *Context, resumeStep int) {
	e.saveCheckpointBestEffort(&store.Checkpoint{
		WorkflowID:  c.ID,
		CurrentStep: resumeStep,
		State:       store.StatePaused,
		ContextData: snapshotData(c),
		Metadata:    map[string]any{"paused_at_step": resumeStep},
	})
}

func (e *Engine) recordLatency(stepName string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.recordStepLatency(e.name, stepName, d)
	}
}
