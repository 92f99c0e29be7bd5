package services

import "context"

type contextKey string

const (
	seriesKey     contextKey = "series"
	identifierKey contextKey = "identifier"
	stageKey      contextKey = "stage"
	runIDKey      contextKey = "run_id"
)

// WithSeries annotates context with the series name being processed.
func WithSeries(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, seriesKey, name)
}

// SeriesFromContext returns the series name if present.
func SeriesFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(seriesKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithIdentifier annotates context with the archive item identifier.
func WithIdentifier(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, identifierKey, id)
}

// IdentifierFromContext extracts the archive item identifier if present.
func IdentifierFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(identifierKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the derivation stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the identifier of the current CLI invocation.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
