// Package workflow implements a priority-preemptive workflow scheduler: a
// min-heap message queue, a checkpointing step-engine, and the contract that
// ties them together durably.
package workflow

import (
	"context"
	"errors"
	"strconv"

	"github.com/ssoriche/prioflow/workflow/store"
)

// ErrStoreUnavailable indicates the backing checkpoint store could not be
// reached. It is never retried inside this package; callers see it wrapped
// with context via %w. It is the same sentinel as store.ErrUnavailable so
// callers only need to check one error regardless of which layer surfaced
// it.
var ErrStoreUnavailable = store.ErrUnavailable

// ErrCancelled is returned by Engine.Execute when cooperative cancellation
// was delivered at the per-step yield point. It is a distinct sentinel, not
// a wrapper around context.Canceled; isCancelled treats the two
// interchangeably since either can reach a caller depending on where
// cancellation is observed.
var ErrCancelled = errors.New("workflow: execution cancelled")

// ErrUnknownWorkflow indicates a message named a workflow with no registered
// Engine. The consumer logs a warning and drops the message; it never halts
// the loop.
var ErrUnknownWorkflow = errors.New("workflow: unknown workflow name")

// StepFailedError wraps a step function's error with the index of the step
// that produced it. The engine writes a best-effort FAILED checkpoint before
// returning this to the caller.
type StepFailedError struct {
	Step  int
	Cause error
}

func (e *StepFailedError) Error() string {
	return "workflow: step " + strconv.Itoa(e.Step) + " failed: " + e.Cause.Error()
}

func (e *StepFailedError) Unwrap() error { return e.Cause }

// SerializationError wraps a failure to marshal or unmarshal checkpoint
// data. It is defined in workflow/store (the layer that actually serializes
// checkpoints) and aliased here so callers of this package never need to
// import store directly to type-assert it.
type SerializationError = store.SerializationError

// isCancelled reports whether err represents cooperative cancellation,
// whether it originated from this package's ErrCancelled or from a
// cancelled context.Context.
func isCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
