package sqlite

import (
	"context"
	"database/sql"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, full_name, avatar_url, currency, language)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.FullName, mapStringNull(p.AvatarURL), p.Currency, p.Language)
	return mapConstraint(err)
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, userID string) (domain.Profile, error) {
	var (
		p         domain.Profile
		avatarURL sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, avatar_url, currency, language, created_at, updated_at
		 FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &p.Email, &p.FullName, &avatarURL, &p.Currency, &p.Language, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.AvatarURL = mapNullString(avatarURL)
	return p, nil
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, p domain.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles
		 SET full_name = ?, avatar_url = ?, currency = ?, language = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.FullName, mapStringNull(p.AvatarURL), p.Currency, p.Language, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
