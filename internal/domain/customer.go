package domain

import "time"

// CustomerStatus represents lifecycle states for a customer (clinic) account.
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "ACTIVE"
	CustomerStatusSuspended CustomerStatus = "SUSPENDED"
)

// Customer is the domain model for a clinic tenant that books media days.
type Customer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       CustomerStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
