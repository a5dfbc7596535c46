// Package runid carries the per-run correlation identifier through a
// pipeline invocation's context, the way an HTTP server would carry a
// per-request ID.
package runid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const runIDContextKey contextKey = "run_id"

// New generates a fresh run identifier.
func New() string {
	return uuid.NewString()
}

// WithContext attaches a run ID to ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDContextKey, id)
}

// FromContext retrieves the run ID previously attached with WithContext,
// or the empty string if none is present.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDContextKey).(string)
	return id
}
