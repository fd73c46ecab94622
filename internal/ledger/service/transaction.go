package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefrontbuilder/ledger/internal/ledger/aggregate"
	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/parse"
	"github.com/storefrontbuilder/ledger/internal/ledger/storage"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/pkg/idx"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

var (
	ErrInvalidTransaction  = errors.New("invalid_transaction")
	ErrTransactionNotFound = errors.New("transaction_not_found")
)

// MaxListLimit caps list queries so a single request cannot page the whole
// table at once.
const MaxListLimit = 500

type TransactionService struct {
	Store   store.Store
	Storage *storage.Store
}

// TransactionInput is the create payload after HTTP decoding.
type TransactionInput struct {
	CategoryID      string
	Amount          decimal.Decimal
	Description     string
	Type            domain.EntryType
	InputMethod     domain.InputMethod
	ReceiptImageURL string
	TransactionDate time.Time
}

// Create appends a new entry to the user's ledger. Entries are append-only:
// there is no update or delete path.
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (domain.Transaction, error) {
	l := slogx.FromContext(ctx)

	if !in.Amount.IsPositive() || !in.Type.Valid() {
		return domain.Transaction{}, ErrInvalidTransaction
	}
	if in.InputMethod == "" {
		in.InputMethod = domain.InputManual
	}
	if !in.InputMethod.Valid() {
		return domain.Transaction{}, ErrInvalidTransaction
	}
	if in.TransactionDate.IsZero() {
		in.TransactionDate = time.Now()
	}

	// A category reference must point at one of the caller's own categories.
	if in.CategoryID != "" {
		if _, err := s.Store.Categories().GetCategoryByID(ctx, userID, in.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Transaction{}, ErrInvalidTransaction
			}
			return domain.Transaction{}, err
		}
	}

	t := domain.Transaction{
		ID:              idx.New().String(),
		UserID:          userID,
		CategoryID:      in.CategoryID,
		Amount:          in.Amount,
		Description:     strings.TrimSpace(in.Description),
		Type:            in.Type,
		InputMethod:     in.InputMethod,
		ReceiptImageURL: in.ReceiptImageURL,
		TransactionDate: in.TransactionDate,
	}
	if err := s.Store.Transactions().CreateTransaction(ctx, t); err != nil {
		return domain.Transaction{}, err
	}

	l.Info("transaction recorded",
		slog.String("user_id", userID),
		slog.String("transaction_id", t.ID),
		slog.String("type", string(t.Type)),
	)

	return s.Store.Transactions().GetTransactionByID(ctx, userID, t.ID)
}

func (s *TransactionService) List(ctx context.Context, userID string, f store.TransactionFilter) ([]domain.Transaction, error) {
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return s.Store.Transactions().ListTransactions(ctx, userID, f)
}

// Stats totals the user's whole ledger.
func (s *TransactionService) Stats(ctx context.Context, userID string) (aggregate.Stats, error) {
	txs, err := s.Store.Transactions().ListTransactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return aggregate.Stats{}, err
	}
	return aggregate.ComputeStats(txs), nil
}

// Daily buckets the last `days` days (today inclusive) for the dashboard
// chart. Days with no activity come back zero-filled.
func (s *TransactionService) Daily(ctx context.Context, userID string, days int, now time.Time) ([]aggregate.DayBucket, error) {
	if days <= 0 {
		days = 7
	}

	end := now
	start := now.AddDate(0, 0, -(days - 1))

	txs, err := s.Store.Transactions().ListTransactions(ctx, userID, store.TransactionFilter{
		From: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		To:   end,
	})
	if err != nil {
		return nil, err
	}
	return aggregate.BucketByDay(txs, start, end), nil
}

// ParseVoice turns a transcript into a transaction draft without persisting
// anything; the client confirms it before calling Create.
func (s *TransactionService) ParseVoice(ctx context.Context, transcript string) (parse.Draft, error) {
	d, err := parse.Voice(transcript)
	if err != nil {
		return parse.Draft{}, ErrInvalidTransaction
	}
	return d, nil
}

// UploadReceipt stores a receipt image under the user's namespace and
// returns its public URL. Existing objects at the same path are replaced.
func (s *TransactionService) UploadReceipt(ctx context.Context, userID, ext string, r io.Reader) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "jpg"
	}

	path := fmt.Sprintf("%s/%d.%s", userID, time.Now().UnixMilli(), ext)
	return s.Storage.Put(storage.BucketReceipts, path, r)
}
