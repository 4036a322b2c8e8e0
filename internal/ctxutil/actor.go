// Package ctxutil carries the acting principal through a context.Context.
// It imports nothing from pulse so every layer may depend on it.
package ctxutil

import "context"

type principalKey struct{}

// WithPrincipalID returns ctx carrying the authenticated principal id.
// Audit entries read it back; authorization never does, it takes an explicit
// primary.Access instead.
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	if principalID == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, principalID)
}

// PrincipalFromContext returns the principal id, or "" for work done by the
// system itself (reminder runs, analysis sweeps started by the daemon).
func PrincipalFromContext(ctx context.Context) string {
	id, _ := ctx.Value(principalKey{}).(string)
	return id
}
