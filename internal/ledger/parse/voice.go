// Package parse turns free-form voice transcripts into transaction drafts.
package parse

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

var ErrNoAmount = errors.New("parse: no amount found in transcript")

// First decimal number in the transcript is taken as the amount.
var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// "bought", "paid" and "spent" need no list of their own: anything that is
// not recognisably income falls through to expense.
var incomeWords = []string{"sold", "earned", "received"}

// Draft is a transaction candidate extracted from a transcript. The caller
// fills in the owner, category and date before persisting.
type Draft struct {
	Amount      decimal.Decimal
	Type        domain.EntryType
	Description string
}

// Voice extracts an amount, an entry type and a description from a spoken
// transcript. Income keywords win over expense keywords; with neither
// present the entry defaults to expense, the common case for a shopkeeper
// logging purchases.
func Voice(transcript string) (Draft, error) {
	raw := amountPattern.FindString(transcript)
	if raw == "" {
		return Draft{}, ErrNoAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Draft{}, ErrNoAmount
	}

	lower := strings.ToLower(transcript)
	typ := domain.EntryExpense
	for _, w := range incomeWords {
		if strings.Contains(lower, w) {
			typ = domain.EntryIncome
			break
		}
	}

	return Draft{
		Amount:      amount,
		Type:        typ,
		Description: strings.TrimSpace(transcript),
	}, nil
}
