package authz

import (
	"github.com/kbukum/feedback/errors"
	"github.com/kbukum/feedback/identity"
)

// Permissions checked by the account endpoints.
const (
	PermUserList     = "user:list"
	PermUserRead     = "user:read"
	PermUserReadSelf = "user:read-self"
)

// Checker answers whether a subject (a role name) holds a permission.
type Checker interface {
	HasPermission(subject string, permission string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(subject string, permission string) bool

func (f CheckerFunc) HasPermission(subject string, permission string) bool {
	return f(subject, permission)
}

// MapChecker is an in-memory Checker from subject to permission patterns.
type MapChecker struct {
	permissions map[string][]string
}

// NewMapChecker creates a Checker from a static map of subject to
// "resource:action" patterns.
func NewMapChecker(permissions map[string][]string) *MapChecker {
	return &MapChecker{permissions: permissions}
}

func (c *MapChecker) HasPermission(subject string, required string) bool {
	patterns, ok := c.permissions[subject]
	if !ok {
		return false
	}
	return MatchAny(patterns, required)
}

// DefaultPolicy is the role table of the feedback API.
func DefaultPolicy() *MapChecker {
	return NewMapChecker(map[string][]string{
		string(identity.RoleAdmin): {"*:*"},
		string(identity.RoleTeacher): {
			"project:*", "feedback:*", "comment:*", "label:*", "enrollment:*",
			PermUserRead, PermUserReadSelf,
		},
		string(identity.RoleStudent): {
			"feedback:*", "comment:*", "enrollment:read",
			PermUserReadSelf,
		},
	})
}

// Allowed reports whether id's role holds permission under c.
func Allowed(c Checker, id identity.Identity, permission string) bool {
	return id.Role.Valid() && c.HasPermission(string(id.Role), permission)
}

// RequirePermission returns a forbidden error unless Allowed.
func RequirePermission(c Checker, id identity.Identity, permission string) error {
	if Allowed(c, id, permission) {
		return nil
	}
	return errors.Forbidden("").WithDetail("permission", permission)
}
