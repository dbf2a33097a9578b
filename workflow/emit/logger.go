// Package emit provides the structured-logging capability carried on a
// workflow.Context, adapted from the teacher's graph/emit event emitter
// into a plain leveled-logger interface suited to step-by-step narration.
package emit

// Logger is the capability handle attached to a workflow.Context. It is
// purely observational: nothing in the engine or queue branches on what a
// Logger does with a call.
//
// kv is an alternating key/value list, matching the structured-logging
// convention used across the example corpus (go-logr, zap's SugaredLogger).
// An odd-length kv is tolerated; the trailing key is logged with a nil
// value.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NullLogger discards every call. It is the default Logger for a Context
// that no publisher configured, matching the prototype's `logger=None`.
type NullLogger struct{}

func (NullLogger) Info(string, ...any)  {}
func (NullLogger) Warn(string, ...any)  {}
func (NullLogger) Error(string, ...any) {}

// multiLogger fans a call out to every configured Logger in order.
type multiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a Logger that forwards each call to every non-nil
// logger in loggers, used to attach an OTelLogger alongside a caller's own
// logger without replacing it.
func NewMultiLogger(loggers ...Logger) Logger {
	filtered := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			filtered = append(filtered, l)
		}
	}
	return multiLogger{loggers: filtered}
}

func (m multiLogger) Info(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Info(msg, kv...)
	}
}

func (m multiLogger) Warn(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Warn(msg, kv...)
	}
}

func (m multiLogger) Error(msg string, kv ...any) {
	for _, l := range m.loggers {
		l.Error(msg, kv...)
	}
}
