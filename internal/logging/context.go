package logging

import (
	"context"
	"log/slog"

	"redactor/internal/services"
)

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldExportID      = "export_id"
	FieldRedactionID   = "redaction_id"
	FieldCorrelationID = "correlation_id" // API request id
	FieldEventType     = "event_type"     // classifies warnings and errors
	FieldErrorHint     = "error_hint"     // next step for the operator
	FieldImpact        = "impact"         // what the user loses
)

// ContextFields returns the export and request ids carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var out []slog.Attr
	if id, ok := services.ExportIDFromContext(ctx); ok {
		out = append(out, slog.String(FieldExportID, id))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		out = append(out, slog.String(FieldCorrelationID, id))
	}
	return out
}

// WithContext scopes logger to the ids carried by ctx. A nil logger becomes
// a no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(Args(fields...)...)
	}
	return logger
}
