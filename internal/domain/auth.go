package domain

import "time"

// IssuedToken carries a freshly signed credential and its metadata, returned
// by the login flows alongside the account record.
type IssuedToken struct {
	Value     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
