package credentials

import (
	"context"
)

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the validated identity in the given context
func WithIdentityContext(ctx context.Context, identity *IdentityContext) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the validated identity from the context.
func IdentityFromContext(ctx context.Context) (*IdentityContext, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*IdentityContext)
	return raw, ok
}

// SubjectFromContext returns the authenticated subject id, empty when the
// request never passed the gate.
func SubjectFromContext(ctx context.Context) string {
	if identity, ok := IdentityFromContext(ctx); ok {
		return identity.ID
	}
	return ""
}
