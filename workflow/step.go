package workflow

import "context"

// StepFunc is a pure function from Context to Context: the unit of
// checkpointing. It may mutate Context.Data; it must not mutate
// Context.Request. Per spec, steps are synchronous from the engine's
// perspective — the engine is the only thing that creates cancellation
// opportunities, at the mandatory pacing yield before each step runs.
type StepFunc func(ctx context.Context, c *Context) (*Context, error)

// NamedStep pairs a StepFunc with the human-readable name the engine
// records in checkpoint metadata and log lines, replacing the reflection
// the original prototype used (step.__name__) with an explicit label, as
// recommended by spec §9's "Step registry" note.
type NamedStep struct {
	Name string
	Fn   StepFunc
}

// Step constructs a NamedStep, a small convenience for Configure call sites.
func Step(name string, fn StepFunc) NamedStep {
	return NamedStep{Name: name, Fn: fn}
}
