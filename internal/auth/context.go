package auth

import "context"

type identityContextKey struct{}

// ContextWithIdentity attaches the resolved identity to the context. The
// attachment is idempotent: an identity already present for this request is
// never overwritten, so running the gate twice cannot swap callers mid-flight.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	if _, ok := IdentityFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey{}, &identity)
}

// IdentityFromContext extracts the resolved identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil {
		return Identity{}, false
	}
	return *v, true
}
