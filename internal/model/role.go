package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a user or project member can hold.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProjectAdmin Role = "project_admin"
	RoleMember       Role = "member"
)

// AvailableRoles lists every valid role in privilege order.
var AvailableRoles = []Role{RoleAdmin, RoleProjectAdmin, RoleMember}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectAdmin, RoleMember:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalises raw input into a Role. An empty value yields RoleMember.
func ParseRole(raw string) (Role, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return RoleMember, nil
	}

	role := Role(strings.ReplaceAll(cleaned, "-", "_"))
	if !role.Valid() {
		return "", NewFieldError("role", fmt.Sprintf("must be one of %s", strings.Join(roleNames(), ", ")))
	}

	return role, nil
}

// CanManageProjects reports whether the role may mutate projects, members and tasks.
func (r Role) CanManageProjects() bool {
	return r == RoleAdmin || r == RoleProjectAdmin
}

func roleNames() []string {
	names := make([]string, 0, len(AvailableRoles))
	for _, role := range AvailableRoles {
		names = append(names, string(role))
	}
	return names
}
