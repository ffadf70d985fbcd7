package auth

import (
	"context"

	"chat-sync/domain"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Authenticator resolves the value of an Authorization header to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (domain.Identity, error)
}

// WithIdentity injects the authenticated user into the context for downstream layers.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFromContext returns the user injected by the HTTP middleware or the gRPC interceptor.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}
