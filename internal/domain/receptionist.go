package domain

import "time"

// Receptionist is a delegated sub-account that acts on behalf of a parent
// customer. Delegation is a plain back-reference; a receptionist is never a
// customer itself.
type Receptionist struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	ParentCustomerID string
	CanBookMediaDay  bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
