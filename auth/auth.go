// Package auth ties together credential hashing and token validation.
//
// Transport layers depend on TokenValidator, not on a concrete token
// format. The value a validator returns is attached to the request context
// through authctx.
package auth

// TokenValidator validates a bearer token and returns the principal it
// asserts. Any error means the request is unauthenticated; callers must not
// distinguish between error kinds in their responses.
type TokenValidator interface {
	ValidateToken(token string) (any, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(token string) (any, error)

func (f TokenValidatorFunc) ValidateToken(token string) (any, error) {
	return f(token)
}
