package parse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

func TestVoice(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		amount     string
		typ        domain.EntryType
	}{
		{"sold is income", "sold 3 bags of rice for 45.50", "3", domain.EntryIncome},
		{"earned is income", "earned 120 today from repairs", "120", domain.EntryIncome},
		{"received is income", "received 99.99 from a customer", "99.99", domain.EntryIncome},
		{"bought is expense", "bought supplies for 12.75", "12.75", domain.EntryExpense},
		{"paid is expense", "paid 200 rent", "200", domain.EntryExpense},
		{"no keyword defaults to expense", "coffee 4.50", "4.50", domain.EntryExpense},
		{"case insensitive", "SOLD two shirts for 30", "30", domain.EntryIncome},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Voice(tc.transcript)
			require.NoError(t, err)

			assert.True(t, d.Amount.Equal(decimal.RequireFromString(tc.amount)),
				"amount %s != %s", d.Amount, tc.amount)
			assert.Equal(t, tc.typ, d.Type)
			assert.Equal(t, tc.transcript, d.Description)
		})
	}
}

func TestVoice_FirstNumberWins(t *testing.T) {
	d, err := Voice("paid 15.25 for 3 boxes")
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("15.25")))
}

func TestVoice_NoAmount(t *testing.T) {
	_, err := Voice("bought some apples")
	assert.ErrorIs(t, err, ErrNoAmount)
}

func TestVoice_TrimsDescription(t *testing.T) {
	d, err := Voice("  sold bread for 5  ")
	require.NoError(t, err)
	assert.Equal(t, "sold bread for 5", d.Description)
}
