// Package identity defines who a request is acting as.
//
// An Identity is established once per request from a verified token and
// is read-only afterwards. It travels in the request context; nothing is
// kept on the server between requests.
package identity

import (
	"context"

	"github.com/kbukum/feedback/auth/authctx"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Is reports whether the identity holds one of roles.
func (i Identity) Is(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return authctx.Set(ctx, id)
}

// FromContext returns the identity attached to ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	return authctx.Get[Identity](ctx)
}
