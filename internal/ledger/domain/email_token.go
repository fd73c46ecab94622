package domain

import "time"

// OtpType is the verification purpose carried by a one-time token.
// Only email confirmation is issued today; the type travels on the wire so
// more purposes can be added without breaking links already in inboxes.
type OtpType string

const (
	OtpTypeEmail OtpType = "email"
)

// EmailToken is a single-use credential embedded in a verification link.
// The raw link token is never stored, only its fingerprint. CodeSecret
// backs the short numeric code alternative sent in the same email.
type EmailToken struct {
	ID         string
	UserID     string
	Email      string
	TokenHash  string // fingerprint of the opaque link token
	CodeSecret string // base32 HOTP secret for the 6-digit code
	Type       OtpType
	ExpiresAt  time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
}
