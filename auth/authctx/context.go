// Package authctx carries the authenticated principal in a context.Context.
//
// The value is stored under an unexported key so only this package can set
// it. Typed retrieval is done with Get:
//
//	ctx = authctx.Set(ctx, id)
//	id, ok := authctx.Get[identity.Identity](ctx)
//
// There is deliberately no panicking accessor: a handler reached without a
// principal reports unauthenticated instead of crashing.
package authctx

import (
	"context"
	"errors"
)

type contextKey struct{}

// ErrNoPrincipal is returned when no principal of the requested type is present.
var ErrNoPrincipal = errors.New("authctx: no principal in context")

// Set returns a copy of ctx carrying principal.
func Set(ctx context.Context, principal any) context.Context {
	return context.WithValue(ctx, contextKey{}, principal)
}

// Get returns the principal stored in ctx if it has type T.
func Get[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(contextKey{}).(T)
	return v, ok
}

// GetOrError is Get returning ErrNoPrincipal instead of false.
func GetOrError[T any](ctx context.Context) (T, error) {
	v, ok := Get[T](ctx)
	if !ok {
		return v, ErrNoPrincipal
	}
	return v, nil
}
