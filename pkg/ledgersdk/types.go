package ledgersdk

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the account as the API reports it.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name,omitempty"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

// TokenResponse is the session payload returned by sign-in, refresh and
// verification.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// SessionResponse pairs a user with an optional session. Sign-up returns a
// user and no session (confirmation pending); verification returns both.
type SessionResponse struct {
	User    *User          `json:"user,omitempty"`
	Session *TokenResponse `json:"session,omitempty"`
	Message string         `json:"message,omitempty"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// VerifyRequest redeems either a link token (TokenHash) or an email+code
// pair. Type defaults to "email" when empty.
type VerifyRequest struct {
	TokenHash string `json:"token_hash,omitempty"`
	Type      string `json:"type,omitempty"`
	Email     string `json:"email,omitempty"`
	Code      string `json:"code,omitempty"`
}

type ResendRequest struct {
	Type        string `json:"type,omitempty"`
	Email       string `json:"email"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Currency  string    `json:"currency"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProfileUpdateRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Currency  *string `json:"currency,omitempty"`
	Language  *string `json:"language,omitempty"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryCreateRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
}

type Transaction struct {
	ID              string          `json:"id"`
	CategoryID      string          `json:"category_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type"`
	InputMethod     string          `json:"input_method"`
	ReceiptImageURL string          `json:"receipt_image_url,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TransactionCreateRequest struct {
	CategoryID      string          `json:"category_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type"`
	InputMethod     string          `json:"input_method,omitempty"`
	ReceiptImageURL string          `json:"receipt_image_url,omitempty"`
	TransactionDate time.Time       `json:"transaction_date,omitempty"`
}

type ParseRequest struct {
	Transcript string `json:"transcript"`
}

// ParseResponse is a transaction draft: nothing is persisted until the
// client confirms it with a create call.
type ParseResponse struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
}

type Stats struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	TransactionCount int             `json:"transaction_count"`
}

type DayBucket struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
