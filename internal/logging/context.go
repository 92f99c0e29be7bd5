package logging

import (
	"context"
	"log/slog"

	"meetscribe/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSeries is the standardized structured logging key for series names.
	FieldSeries = "series"
	// FieldIdentifier is the standardized structured logging key for archive item identifiers.
	FieldIdentifier = "identifier"
	// FieldStage is the standardized structured logging key for derivation stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for the CLI invocation identifier.
	FieldRunID = "run_id"
	// FieldEventType classifies notable log events.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries services.Kind for failed operations.
	FieldErrorKind = "error_kind"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if name, ok := services.SeriesFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSeries, name))
	}
	if id, ok := services.IdentifierFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldIdentifier, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
