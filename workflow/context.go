package workflow

import (
	"github.com/google/uuid"

	"github.com/ssoriche/prioflow/workflow/emit"
)

// Context carries the mutable per-instance state a workflow's steps read and
// write. It is the Go analogue of the original prototype's WorkflowContext
// dataclass.
//
// ID is stable for the lifetime of the instance, including across
// pause/resume. Request is populated once by the publisher and the engine
// never mutates it. Logger is a non-persisted capability: it must be
// re-attached by the publisher on every fresh Execute call, never restored
// from a checkpoint (see Engine.Execute's resume discovery).
type Context struct {
	ID      string
	Data    map[string]any
	Request map[string]any
	Logger  emit.Logger
}

// NewContext constructs a Context with a fresh random id and an empty Data
// map. Request is nil unless supplied via options; steps treat a nil Request
// as an empty, read-only map.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		ID:     uuid.NewString(),
		Data:   make(map[string]any),
		Logger: emit.NullLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithRequest attaches the publisher-supplied, read-only request payload.
func WithRequest(request map[string]any) ContextOption {
	return func(c *Context) { c.Request = request }
}

// WithLogger attaches a structured-logging capability to the context.
func WithLogger(logger emit.Logger) ContextOption {
	return func(c *Context) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// cloneData returns a shallow copy of Data, used when building checkpoint
// snapshots so later mutation of the live context cannot retroactively
// change a checkpoint already handed to the store.
func cloneData(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
