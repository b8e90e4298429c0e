package domain

import "strings"

// Role is the single authorization attribute of an identity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleTrainer, RoleMember}

// ParseRole accepts a case-insensitive role name. Empty selects RoleMember.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RoleMember, true
	case RoleAdmin, RoleTrainer, RoleMember:
		return r, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok && r != ""
}

func (r Role) String() string { return string(r) }
