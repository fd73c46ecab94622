package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, full_name, password_hash, email_confirmed_at, confirmation_sent, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u           domain.User
		confirmedAt sql.NullTime
		sentAt      sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &confirmedAt, &sentAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.EmailConfirmedAt = mapNullTimePtr(confirmedAt)
	u.ConfirmationSent = mapNullTimePtr(sentAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, u.PasswordHash)
	return mapConstraint(err)
}

func (r *usersRepo) ConfirmEmail(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_confirmed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at.UTC(), userID)
	return err
}

func (r *usersRepo) SetConfirmationSent(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET confirmation_sent = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at.UTC(), userID)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newHash, userID)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}
