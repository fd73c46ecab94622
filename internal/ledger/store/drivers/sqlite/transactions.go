package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
)

type transactionsRepo struct {
	db dbtx
}

const transactionColumns = `id, user_id, category_id, amount, description, type, input_method, receipt_image_url, transaction_date, created_at, updated_at`

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, amount, description, type, input_method, receipt_image_url, transaction_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, mapStringNull(t.CategoryID), t.Amount.String(), t.Description,
		string(t.Type), string(t.InputMethod), mapStringNull(t.ReceiptImageURL), t.TransactionDate.UTC())
	return mapConstraint(err)
}

func (r *transactionsRepo) GetTransactionByID(ctx context.Context, userID, id string) (domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row.Scan)
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, userID string, f store.TransactionFilter) ([]domain.Transaction, error) {
	var (
		conds = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if !f.From.IsZero() {
		conds = append(conds, "transaction_date >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "transaction_date <= ?")
		args = append(args, f.To.UTC())
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY transaction_date DESC, created_at DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(scan func(dest ...any) error) (domain.Transaction, error) {
	var (
		t          domain.Transaction
		categoryID sql.NullString
		amount     string
		receiptURL sql.NullString
	)
	err := scan(&t.ID, &t.UserID, &categoryID, &amount, &t.Description, &t.Type,
		&t.InputMethod, &receiptURL, &t.TransactionDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Transaction{}, mapNotFound(err)
	}
	t.CategoryID = mapNullString(categoryID)
	t.ReceiptImageURL = mapNullString(receiptURL)
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}
