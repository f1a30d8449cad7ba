package permission

import "context"

type ctxKey struct{}

// WithGate returns a copy of ctx carrying g.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, ctxKey{}, g)
}

// FromContext returns the gate stored in ctx, or nil.
func FromContext(ctx context.Context) *Gate {
	g, _ := ctx.Value(ctxKey{}).(*Gate)
	return g
}
