package queue

import "time"

// Routing keys on the ledger topic exchange.
const (
	KeyUserRegistered        = "user.registered"
	KeyVerificationRequested = "user.verification_requested"
	KeyUserVerified          = "user.verified"
)

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// VerificationRequested carries everything the notify worker needs to send
// the verification email: the link with the opaque token and the short code
// for manual entry.
type VerificationRequested struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	VerifyURL string    `json:"verify_url"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserVerified struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
