package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid PIN")
	ErrWeakPIN            = errors.New("PIN must be at least 4 characters")
	ErrNotConfigured      = errors.New("admin PIN is not configured")
)

// PINAuthenticator checks the admin PIN against a bcrypt hash.
type PINAuthenticator struct {
	hash []byte
}

// NewPINAuthenticator creates an authenticator for the given bcrypt hash.
// An empty hash disables admin login.
func NewPINAuthenticator(hash string) *PINAuthenticator {
	return &PINAuthenticator{hash: []byte(hash)}
}

// ValidatePIN checks if the PIN meets minimum requirements.
func ValidatePIN(pin string) error {
	if len(pin) < 4 {
		return ErrWeakPIN
	}
	return nil
}

// HashPIN returns the bcrypt hash of a PIN.
func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hashed), nil
}

// Authenticate compares the PIN with the stored hash.
func (a *PINAuthenticator) Authenticate(ctx context.Context, credential string) (Role, error) {
	if len(a.hash) == 0 {
		return "", ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrInvalidCredentials
	}
	return RoleAdmin, nil
}
