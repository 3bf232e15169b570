package domain

import "strings"

// Role is the marketplace role chosen at signup.
type Role string

const (
	RoleHomeowner Role = "homeowner"
	RoleExpert    Role = "expert"
)

// ParseRole maps a submitted role value to a Role. Anything other than
// "expert" (including an empty selection) is a homeowner.
func ParseRole(s string) Role {
	if Role(strings.TrimPrefix(strings.TrimSpace(s), "role-")) == RoleExpert {
		return RoleExpert
	}
	return RoleHomeowner
}

// User models a registered visitor. Email is the natural key.
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// EffectiveRole is the role dashboards branch on: expert, or homeowner for
// any other stored value.
func (u User) EffectiveRole() Role {
	if u.Role == RoleExpert {
		return RoleExpert
	}
	return RoleHomeowner
}

// FirstName returns the first whitespace-separated token of the name.
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return u.Name
	}
	return fields[0]
}
