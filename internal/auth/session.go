package auth

import (
	"context"

	"github.com/sakif/smartbio/internal/apperror"
)

// contextKey is unexported so no other package can read or overwrite the
// identity stored in a context.
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Current returns the identity attached to ctx, if any.
func Current(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Email != ""
}

// Require is the guard used by every operation that needs an owner.
// It returns apperror.ErrNotAuthenticated when ctx carries no identity.
func Require(ctx context.Context) (Identity, error) {
	id, ok := Current(ctx)
	if !ok {
		return Identity{}, apperror.NotAuthenticated()
	}
	return id, nil
}
