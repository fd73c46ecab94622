package domain

import "time"

// Default settings applied when a profile is provisioned.
const (
	DefaultCurrency = "USD"
	DefaultLanguage = "en"
)

// Profile is the application-owned per-user settings record, distinct from
// the User identity. It shares the identity's id (one-to-one) and is created
// exactly once, on first confirmed sign-up.
type Profile struct {
	ID        string // equals the owning User id
	Email     string
	FullName  string
	AvatarURL string // optional
	Currency  string // ISO 4217 code
	Language  string // BCP 47 language tag
	CreatedAt time.Time
	UpdatedAt time.Time
}
