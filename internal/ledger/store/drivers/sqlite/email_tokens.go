package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

type emailTokensRepo struct {
	db dbtx
}

const emailTokenColumns = `id, user_id, email, token_hash, code_secret, type, expires_at, used_at, created_at`

func scanEmailToken(row *sql.Row) (domain.EmailToken, error) {
	var (
		t      domain.EmailToken
		usedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Email, &t.TokenHash, &t.CodeSecret, &t.Type, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		return domain.EmailToken{}, mapNotFound(err)
	}
	t.UsedAt = mapNullTimePtr(usedAt)
	return t, nil
}

func (r *emailTokensRepo) CreateEmailToken(ctx context.Context, t domain.EmailToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_tokens (id, user_id, email, token_hash, code_secret, type, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Email, t.TokenHash, t.CodeSecret, string(t.Type), t.ExpiresAt.UTC())
	return mapConstraint(err)
}

func (r *emailTokensRepo) GetEmailTokenByHash(ctx context.Context, hash string) (domain.EmailToken, error) {
	return scanEmailToken(r.db.QueryRowContext(ctx,
		`SELECT `+emailTokenColumns+` FROM email_tokens WHERE token_hash = ?`, hash))
}

func (r *emailTokensRepo) GetLatestEmailTokenByEmail(ctx context.Context, email string, typ domain.OtpType) (domain.EmailToken, error) {
	return scanEmailToken(r.db.QueryRowContext(ctx,
		`SELECT `+emailTokenColumns+` FROM email_tokens
		 WHERE email = ? AND type = ?
		 ORDER BY created_at DESC LIMIT 1`, email, string(typ)))
}

func (r *emailTokensRepo) MarkEmailTokenUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_tokens SET used_at = ? WHERE id = ?`, at.UTC(), id)
	return err
}

func (r *emailTokensRepo) InvalidateUserEmailTokens(ctx context.Context, userID string, typ domain.OtpType, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_tokens SET used_at = ? WHERE user_id = ? AND type = ? AND used_at IS NULL`,
		at.UTC(), userID, string(typ))
	return err
}

func (r *emailTokensRepo) DeleteExpiredEmailTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM email_tokens WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}
