package identity

import (
	"fmt"
	"strings"
)

// Role is an account's authorization role. The set is closed.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles returns every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher, RoleStudent}
}

// ParseRole accepts exactly one of the valid role names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q: must be one of %s", s, roleList())
	}
	return r, nil
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func roleList() string {
	names := make([]string, 0, 3)
	for _, r := range Roles() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
