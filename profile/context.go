package profile

import "context"

// AdminContext is the per-request administrative context. It associates a
// request with the governing profile scope and a request identifier for log
// correlation. It carries no mutable shared state.
type AdminContext struct {
	// Profile is the profile scope governing this request.
	Profile *Profile

	// RequestID uniquely identifies the request in logs.
	RequestID string
}

type contextKey struct{}

// WithAdminContext returns a copy of ctx carrying the admin context.
func WithAdminContext(ctx context.Context, ac *AdminContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// AdminContextFrom extracts the admin context from ctx, if present.
func AdminContextFrom(ctx context.Context) (*AdminContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(*AdminContext)
	return ac, ok
}
