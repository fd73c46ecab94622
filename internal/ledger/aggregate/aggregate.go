// Package aggregate holds pure functions over lists of transactions.
// They never touch the database; callers fetch first, then aggregate.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

// Stats summarises a list of transactions.
type Stats struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetProfit        decimal.Decimal
	TransactionCount int
}

// DayBucket is one calendar day's worth of activity.
type DayBucket struct {
	Date    time.Time // midnight UTC of the bucket's day
	Income  decimal.Decimal
	Expense decimal.Decimal
	Profit  decimal.Decimal
}

// ComputeStats totals income and expenses over the given transactions.
// An empty (or nil) input yields all zeros.
func ComputeStats(txs []domain.Transaction) Stats {
	s := Stats{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetProfit:     decimal.Zero,
	}
	for _, t := range txs {
		switch t.Type {
		case domain.EntryIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case domain.EntryExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}
	s.NetProfit = s.TotalIncome.Sub(s.TotalExpenses)
	s.TransactionCount = len(txs)
	return s
}

// BucketByDay produces one entry per calendar day in the inclusive
// [windowStart, windowEnd] window, chronologically ordered. Days with no
// transactions are zero-filled. Both bounds are truncated to their UTC day.
func BucketByDay(txs []domain.Transaction, windowStart, windowEnd time.Time) []DayBucket {
	start := truncateDay(windowStart)
	end := truncateDay(windowEnd)
	if end.Before(start) {
		return nil
	}

	days := int(end.Sub(start).Hours()/24) + 1
	buckets := make([]DayBucket, days)
	index := make(map[time.Time]int, days)
	for i := range buckets {
		day := start.AddDate(0, 0, i)
		buckets[i] = DayBucket{
			Date:    day,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Profit:  decimal.Zero,
		}
		index[day] = i
	}

	for _, t := range txs {
		i, ok := index[truncateDay(t.TransactionDate)]
		if !ok {
			continue // outside the window
		}
		switch t.Type {
		case domain.EntryIncome:
			buckets[i].Income = buckets[i].Income.Add(t.Amount)
		case domain.EntryExpense:
			buckets[i].Expense = buckets[i].Expense.Add(t.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Profit = buckets[i].Income.Sub(buckets[i].Expense)
	}
	return buckets
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
