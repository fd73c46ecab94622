package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/storage"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
)

func newTransactionFixture(t *testing.T) (*testServices, *TransactionService, domain.User) {
	t.Helper()

	ts := newTestServices(t)
	ctx := context.Background()

	objects, err := storage.NewStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	svc := &TransactionService{Store: ts.store, Storage: objects}

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)

	return ts, svc, res.User
}

func TestTransactionCreate_Validation(t *testing.T) {
	_, svc, user := newTransactionFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   TransactionInput
	}{
		{"zero amount", TransactionInput{Amount: decimal.Zero, Type: domain.EntryIncome}},
		{"negative amount", TransactionInput{Amount: decimal.NewFromInt(-5), Type: domain.EntryExpense}},
		{"bad type", TransactionInput{Amount: decimal.NewFromInt(5), Type: "transfer"}},
		{"bad input method", TransactionInput{Amount: decimal.NewFromInt(5), Type: domain.EntryIncome, InputMethod: "api"}},
		{"foreign category", TransactionInput{Amount: decimal.NewFromInt(5), Type: domain.EntryIncome, CategoryID: "someone-elses"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, user.ID, tc.in)
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}
}

func TestTransactionCreate_DefaultsApplied(t *testing.T) {
	_, svc, user := newTransactionFixture(t)
	ctx := context.Background()

	before := time.Now()
	tx, err := svc.Create(ctx, user.ID, TransactionInput{
		Amount:      decimal.RequireFromString("12.50"),
		Type:        domain.EntryExpense,
		Description: "  lunch  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.InputManual, tx.InputMethod)
	assert.Equal(t, "lunch", tx.Description)
	assert.False(t, tx.TransactionDate.Before(before.Add(-time.Second)))
}

func TestTransactionCreate_WithCategory(t *testing.T) {
	ts, svc, user := newTransactionFixture(t)
	ctx := context.Background()

	cats := &CategoryService{Store: ts.store}
	cat, err := cats.Create(ctx, user.ID, "Supplies", domain.EntryExpense, "#ff0000")
	require.NoError(t, err)

	tx, err := svc.Create(ctx, user.ID, TransactionInput{
		CategoryID: cat.ID,
		Amount:     decimal.RequireFromString("30.00"),
		Type:       domain.EntryExpense,
	})
	require.NoError(t, err)
	assert.Equal(t, cat.ID, tx.CategoryID)
}

func TestTransactionStats(t *testing.T) {
	_, svc, user := newTransactionFixture(t)
	ctx := context.Background()

	// Empty ledger yields all zeros.
	stats, err := svc.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stats.TotalIncome.IsZero())
	assert.True(t, stats.NetProfit.IsZero())
	assert.Equal(t, 0, stats.TransactionCount)

	for _, e := range []struct {
		amount string
		typ    domain.EntryType
	}{
		{"100.00", domain.EntryIncome},
		{"40.50", domain.EntryExpense},
		{"9.50", domain.EntryExpense},
	} {
		_, err := svc.Create(ctx, user.ID, TransactionInput{
			Amount: decimal.RequireFromString(e.amount),
			Type:   e.typ,
		})
		require.NoError(t, err)
	}

	stats, err = svc.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stats.TotalIncome.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, stats.TotalExpenses.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, stats.NetProfit.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, 3, stats.TransactionCount)
}

func TestTransactionDaily_SevenBuckets(t *testing.T) {
	_, svc, user := newTransactionFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, user.ID, TransactionInput{
		Amount:          decimal.RequireFromString("20.00"),
		Type:            domain.EntryIncome,
		TransactionDate: now.AddDate(0, 0, -2),
	})
	require.NoError(t, err)

	buckets, err := svc.Daily(ctx, user.ID, 7, now)
	require.NoError(t, err)
	require.Len(t, buckets, 7)

	assert.True(t, buckets[4].Income.Equal(decimal.RequireFromString("20.00")))
	for i, b := range buckets {
		if i == 4 {
			continue
		}
		assert.True(t, b.Income.IsZero())
		assert.True(t, b.Expense.IsZero())
	}
}

func TestTransactionList_WindowAndLimit(t *testing.T) {
	_, svc, user := newTransactionFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, user.ID, TransactionInput{
			Amount:          decimal.NewFromInt(int64(i + 1)),
			Type:            domain.EntryIncome,
			TransactionDate: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, user.ID, store.TransactionFilter{
		From:  base.AddDate(0, 0, 1),
		To:    base.AddDate(0, 0, 3),
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestParseVoice(t *testing.T) {
	_, svc, _ := newTransactionFixture(t)

	d, err := svc.ParseVoice(context.Background(), "sold bread for 25.50")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryIncome, d.Type)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("25.50")))

	_, err = svc.ParseVoice(context.Background(), "nothing numeric here")
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestUploadReceipt(t *testing.T) {
	_, svc, user := newTransactionFixture(t)

	url, err := svc.UploadReceipt(context.Background(), user.ID, ".JPG", strings.NewReader("jpeg"))
	require.NoError(t, err)

	assert.Contains(t, url, "/files/receipts/"+user.ID+"/")
	assert.True(t, strings.HasSuffix(url, ".jpg"))
}
