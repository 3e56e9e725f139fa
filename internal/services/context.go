package services

import "context"

type (
	exportIDKey  struct{}
	requestIDKey struct{}
)

// WithExportID tags ctx with the export run it belongs to. Empty ids leave
// ctx unchanged.
func WithExportID(ctx context.Context, id string) context.Context {
	return withID(ctx, exportIDKey{}, id)
}

// ExportIDFromContext returns the export run id set by WithExportID.
func ExportIDFromContext(ctx context.Context) (string, bool) {
	return idFrom(ctx, exportIDKey{})
}

// WithRequestID tags ctx with an API request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return idFrom(ctx, requestIDKey{})
}

func withID(ctx context.Context, key any, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, key, id)
}

func idFrom(ctx context.Context, key any) (string, bool) {
	id, _ := ctx.Value(key).(string)
	return id, id != ""
}
