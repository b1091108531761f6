package auth

import (
	"fmt"
	"strings"
)

// Role is one of the three privilege levels known to the service. Roles are
// not ordered; every operation declares the exact set of roles allowed to
// perform it.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// ParseRole normalizes a role string. It is forgiving about case and
// surrounding whitespace.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer:
		return RoleViewer, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// Identity is the resolved caller of the current request, decoded from a
// validated token. It lives only for the duration of one request and is never
// persisted.
type Identity struct {
	Email       string
	UserID      int64
	Role        Role
	DisplayName string
}
