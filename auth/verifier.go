// Package auth resolves bearer tokens into identities through an external provider.
package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when the provider rejects a token or resolves it to no identity.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated entity behind a request. It is never persisted.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenVerifier exchanges a bearer token for the identity it was issued to.
// Implementations must not cache results across calls.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to TokenVerifier.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}
