package model

type Role string

// Persisted values, keep stable.
const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var AllRoles = []Role{RoleMember, RoleModerator, RoleAdmin}

// ParseRole reports whether s is a known persisted role.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// AtLeast checks if the role meets or exceeds the target role.
// Every authority comparison goes through here.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to its position in member < moderator < admin.
// Unknown roles rank below member.
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
