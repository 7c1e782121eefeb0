// Package authz decides whether an authenticated identity may perform an
// action.
//
// The guard is a pure function of the identity carried by the request and
// the rule the handler states. It never touches persistence, so every
// privileged handler calls it before its first mutation or privileged read:
//
//	if err := authz.RequireRole(id, identity.RoleAdmin); err != nil {
//	    return err // 403
//	}
//
// Resources owned by another account are reported as missing rather than
// forbidden, so callers cannot probe for their existence.
package authz

import (
	"strconv"

	"github.com/kbukum/feedback/errors"
	"github.com/kbukum/feedback/identity"
)

// Authorize reports whether id holds one of the required roles. An empty
// required set admits any authenticated identity.
func Authorize(id identity.Identity, required ...identity.Role) bool {
	if !id.Role.Valid() {
		return false
	}
	if len(required) == 0 {
		return true
	}
	return id.Is(required...)
}

// RequireRole returns a forbidden error unless Authorize admits id.
func RequireRole(id identity.Identity, required ...identity.Role) error {
	if Authorize(id, required...) {
		return nil
	}
	return errors.Forbidden("").WithDetail("role", string(id.Role))
}

// RequireOwner returns a not-found error for resource unless id owns it.
func RequireOwner(id identity.Identity, ownerID int64, resource string) error {
	if id.ID == ownerID && id.Role.Valid() {
		return nil
	}
	return errors.NotFound(resource, strconv.FormatInt(ownerID, 10))
}

// RequireOwnerOr is RequireOwner that also admits the given roles, such as
// staff reading any member's record.
func RequireOwnerOr(id identity.Identity, ownerID int64, resource string, roles ...identity.Role) error {
	if len(roles) > 0 && Authorize(id, roles...) {
		return nil
	}
	return RequireOwner(id, ownerID, resource)
}
