package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of operator roles understood by the presentation layer.
// Catalog, ledger and engine operations never look at it.
type Role int

const (
	RoleRegularUser Role = iota
	RoleAdmin
)

// String returns the canonical lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRegularUser:
		return "user"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// IsAdmin reports whether r may run management operations.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole converts a user supplied role name into a Role.
// Names are matched case-insensitively; "regular" and the empty string
// mean a regular user.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "user", "regular", "":
		return RoleRegularUser, nil
	default:
		return RoleRegularUser, NewInvalidInput(fmt.Sprintf("unknown role %q: must be admin or user", s))
	}
}
