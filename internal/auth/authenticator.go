package auth

import "context"

// Role is the operator role carried in a token.
type Role string

const (
	// RoleAdmin may manage the menu, close and reset the day.
	RoleAdmin Role = "admin"
)

// Authenticator defines the interface for operator authentication.
// This abstraction allows swapping the PIN check for another method
// without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the credential and returns the granted role.
	// Returns ErrInvalidCredentials if the check fails.
	Authenticate(ctx context.Context, credential string) (Role, error)
}
