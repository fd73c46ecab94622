package domain

import "time"

// User is the authenticated identity. The application never mutates it
// outside the auth service operations (sign up, verify, password change).
type User struct {
	ID               string
	Email            string
	FullName         string
	PasswordHash     string     // argon2 encoded
	EmailConfirmedAt *time.Time // nil until the verification link is redeemed
	ConfirmationSent *time.Time // last time a verification email was issued
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Confirmed reports whether the identity has completed email verification.
func (u User) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}
