package domain

// Identity is the authenticated caller as asserted by the hosted auth platform.
type Identity struct {
	UserID string
	Email  string
	Role   string
}
