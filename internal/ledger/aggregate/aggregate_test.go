package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

func tx(amount string, typ domain.EntryType, date time.Time) domain.Transaction {
	return domain.Transaction{
		Amount:          decimal.RequireFromString(amount),
		Type:            typ,
		TransactionDate: date,
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)

	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
	assert.True(t, s.NetProfit.IsZero())
	assert.Equal(t, 0, s.TransactionCount)
}

func TestComputeStats_Totals(t *testing.T) {
	now := time.Now()
	txs := []domain.Transaction{
		tx("100.10", domain.EntryIncome, now),
		tx("0.20", domain.EntryIncome, now),
		tx("33.33", domain.EntryExpense, now),
		tx("6.67", domain.EntryExpense, now),
	}

	s := ComputeStats(txs)

	assert.True(t, s.TotalIncome.Equal(decimal.RequireFromString("100.30")))
	assert.True(t, s.TotalExpenses.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, s.NetProfit.Equal(decimal.RequireFromString("60.30")))
	assert.Equal(t, 4, s.TransactionCount)
}

func TestComputeStats_ProfitInvariant(t *testing.T) {
	// netProfit must always equal totalIncome - totalExpenses, including
	// when expenses exceed income.
	txs := []domain.Transaction{
		tx("10.00", domain.EntryIncome, time.Now()),
		tx("25.50", domain.EntryExpense, time.Now()),
	}

	s := ComputeStats(txs)

	assert.True(t, s.NetProfit.Equal(s.TotalIncome.Sub(s.TotalExpenses)))
	assert.True(t, s.NetProfit.IsNegative())
	assert.Equal(t, len(txs), s.TransactionCount)
}

func TestBucketByDay_SevenDayWindowAlwaysSevenEntries(t *testing.T) {
	end := time.Date(2026, 3, 7, 15, 30, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -6)

	cases := []struct {
		name string
		txs  []domain.Transaction
	}{
		{"no transactions", nil},
		{"one day busy", []domain.Transaction{
			tx("5", domain.EntryIncome, end),
			tx("7", domain.EntryIncome, end),
			tx("2", domain.EntryExpense, end),
		}},
		{"spread out", []domain.Transaction{
			tx("5", domain.EntryIncome, start),
			tx("7", domain.EntryExpense, start.AddDate(0, 0, 3)),
			tx("2", domain.EntryIncome, end),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buckets := BucketByDay(tc.txs, start, end)
			require.Len(t, buckets, 7)
			for i := 1; i < len(buckets); i++ {
				assert.True(t, buckets[i].Date.After(buckets[i-1].Date))
			}
		})
	}
}

func TestBucketByDay_ZeroFillAndSums(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	txs := []domain.Transaction{
		tx("10.00", domain.EntryIncome, start.Add(9*time.Hour)),
		tx("4.00", domain.EntryExpense, start.Add(20*time.Hour)),
		tx("3.50", domain.EntryExpense, end),
		// Outside the window, must be ignored.
		tx("999", domain.EntryIncome, end.AddDate(0, 0, 1)),
	}

	buckets := BucketByDay(txs, start, end)
	require.Len(t, buckets, 3)

	assert.True(t, buckets[0].Income.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, buckets[0].Expense.Equal(decimal.RequireFromString("4.00")))
	assert.True(t, buckets[0].Profit.Equal(decimal.RequireFromString("6.00")))

	// Middle day has no activity and stays zero-filled.
	assert.True(t, buckets[1].Income.IsZero())
	assert.True(t, buckets[1].Expense.IsZero())
	assert.True(t, buckets[1].Profit.IsZero())

	assert.True(t, buckets[2].Profit.Equal(decimal.RequireFromString("-3.50")))
}

func TestBucketByDay_InvertedWindow(t *testing.T) {
	now := time.Now()
	assert.Nil(t, BucketByDay(nil, now, now.AddDate(0, 0, -1)))
}
