package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelLogger implements Logger by recording each call as a span event,
// adapted from the teacher's emit.OTelEmitter (which turns each Event into
// its own span). Logger calls are narration inside an already-running
// workflow span rather than points in time worth their own span, so this
// implementation attaches events to the span found in ctx instead of
// starting new ones.
//
// Construct one per Context with the span that Engine.Execute starts for
// that run (see engine.go), or pass context.Background() to get a no-op
// recorder when no span is active.
type OTelLogger struct {
	ctx context.Context
}

// NewOTelLogger returns a Logger that records events against the span
// carried in ctx, if any.
func NewOTelLogger(ctx context.Context) *OTelLogger {
	return &OTelLogger{ctx: ctx}
}

func (l *OTelLogger) Info(msg string, kv ...any)  { l.record(msg, kv, false) }
func (l *OTelLogger) Warn(msg string, kv ...any)  { l.record(msg, kv, false) }
func (l *OTelLogger) Error(msg string, kv ...any) { l.record(msg, kv, true) }

func (l *OTelLogger) record(msg string, kv []any, isError bool) {
	span := trace.SpanFromContext(l.ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		var val any
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		attrs = append(attrs, attribute.String(key, fmt.Sprintf("%v", val)))
	}

	span.AddEvent(msg, trace.WithAttributes(attrs...))
	if isError {
		span.SetStatus(codes.Error, msg)
	}
}
