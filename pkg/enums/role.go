package enums

import "fmt"

// Role identifies the account type that owns a session.
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePharmacy Role = "pharmacy"
	RoleGroup    Role = "group"
	RoleHospital Role = "hospital"
)

var validRoles = []Role{
	RoleAdmin,
	RolePharmacy,
	RoleGroup,
	RoleHospital,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
