package domain

import "fmt"

// Role enumerates the portal's caller roles.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleCustomer     Role = "CUSTOMER"
	RoleEmployee     Role = "EMPLOYEE"
	RoleReceptionist Role = "RECEPTIONIST"
)

// ParseRole converts a raw string (e.g. a token claim) into a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleCustomer, RoleEmployee, RoleReceptionist:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Valid reports whether the role is a known member of the enum.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
