package flowtrace

import "context"

// ctxKey is the key type for storing a Tracer in context.
type ctxKey struct{}

// WithTracer attaches a tracer to the context.
func WithTracer(ctx context.Context, t *Tracer) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext extracts the tracer from the context. When the context
// carries none, the process default is returned (which may be nil when
// tracing has not been started).
func FromContext(ctx context.Context) *Tracer {
	if ctx == nil {
		return Default()
	}
	if t, ok := ctx.Value(ctxKey{}).(*Tracer); ok {
		return t
	}
	return Default()
}
