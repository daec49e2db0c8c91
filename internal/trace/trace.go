// Package trace carries a per-request correlation id through context,
// replacing ambient thread-local state with an explicit value.
package trace

import "context"

type ctxKey struct{}

// WithTraceID returns a context carrying the correlation id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation id, or "" when none was set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
