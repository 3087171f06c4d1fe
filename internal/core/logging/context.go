package logging

import "context"

type contextKey string

const (
	batchIDKey contextKey = "batch_id"
	pathKey    contextKey = "path"
)

// WithBatchID adds a change batch ID to the context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// WithPath adds a watched path to the context.
func WithPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey, path)
}

// GetBatchID retrieves the batch ID from the context.
// Returns empty string if not present.
func GetBatchID(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDKey).(string); ok {
		return id
	}
	return ""
}

// GetPath retrieves the watched path from the context.
// Returns empty string if not present.
func GetPath(ctx context.Context) string {
	if p, ok := ctx.Value(pathKey).(string); ok {
		return p
	}
	return ""
}
