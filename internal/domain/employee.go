package domain

import "time"

// Employee models an internal portal operator. Admins are employees with
// RoleAdmin; regular staff carry RoleEmployee.
type Employee struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
