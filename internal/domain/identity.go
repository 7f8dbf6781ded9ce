package domain

// Identity is the verified per-request caller context published by the
// authentication middleware after token and session checks succeed. It is
// derived fresh on every request and never persisted.
type Identity struct {
	UserID           string
	Role             Role
	CanBookMediaDay  bool
	ParentCustomerID string
}
