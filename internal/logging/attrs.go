package logging

import (
	"log/slog"
	"time"

	"meetscribe/internal/services"
)

// Attr is the attribute type accepted by every helper in this package.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error records err under "error"; a nil error is written as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// ErrorKind records the services classification of err.
func ErrorKind(err error) Attr {
	return slog.String(FieldErrorKind, services.Kind(err))
}

// Args converts attributes into the variadic form slog.Logger methods take.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name, falling back to a
// no-op logger when logger is nil.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// Notice is the operator-facing part of a warning: what happened, what to do
// about it, and what the run gave up.
type Notice struct {
	Event  string
	Hint   string
	Impact string
}

const (
	defaultHint   = "check logs for details"
	defaultImpact = "operation completed with warnings"
)

// Warn logs msg at WARN carrying the notice's event_type, error_hint, and
// impact fields. Empty hint and impact fall back to generic wording.
func Warn(logger *slog.Logger, msg string, n Notice, attrs ...Attr) {
	if logger == nil {
		return
	}
	if n.Hint == "" {
		n.Hint = defaultHint
	}
	if n.Impact == "" {
		n.Impact = defaultImpact
	}
	fields := make([]Attr, 0, len(attrs)+3)
	fields = append(fields, attrs...)
	fields = append(fields,
		String(FieldEventType, n.Event),
		String(FieldErrorHint, n.Hint),
		String(FieldImpact, n.Impact),
	)
	logger.Warn(msg, Args(fields...)...)
}
