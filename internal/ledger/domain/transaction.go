package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InputMethod records how a transaction entered the system.
type InputMethod string

const (
	InputManual InputMethod = "manual"
	InputVoice  InputMethod = "voice"
	InputPhoto  InputMethod = "photo"
)

// Valid reports whether m is one of the known input methods.
func (m InputMethod) Valid() bool {
	return m == InputManual || m == InputVoice || m == InputPhoto
}

// Transaction is a single income or expense record. Transactions are
// append-only: there are no update or delete operations.
type Transaction struct {
	ID              string
	UserID          string
	CategoryID      string // optional reference, empty when uncategorised
	Amount          decimal.Decimal
	Description     string // optional
	Type            EntryType
	InputMethod     InputMethod
	ReceiptImageURL string    // optional, set for photo entries
	TransactionDate time.Time // calendar date, time component ignored
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
