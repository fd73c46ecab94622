package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

var ErrProfileNotFound = errors.New("profile_not_found")

// ProfileService provisions and maintains the per-user profile row.
type ProfileService struct {
	Store store.Store
}

// Provision creates the profile row for a freshly confirmed user. It is
// idempotent: the row is keyed by the user id, and a conflict from a repeat
// call is treated as success with the existing row left untouched.
func (s *ProfileService) Provision(ctx context.Context, user domain.User) (domain.Profile, error) {
	l := slogx.FromContext(ctx)

	p := domain.Profile{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Currency: domain.DefaultCurrency,
		Language: domain.DefaultLanguage,
	}

	err := s.Store.Profiles().CreateProfile(ctx, p)
	if err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return domain.Profile{}, err
		}
		l.Debug("profile already provisioned", slog.String("user_id", user.ID))
		return s.Store.Profiles().GetProfileByID(ctx, user.ID)
	}

	l.Info("profile provisioned", slog.String("user_id", user.ID))
	return s.Store.Profiles().GetProfileByID(ctx, user.ID)
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}

// ProfileUpdate carries the user-editable fields; nil means "leave as is".
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
	Currency  *string
	Language  *string
}

func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (domain.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}

	if upd.FullName != nil {
		p.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.Currency != nil && *upd.Currency != "" {
		p.Currency = strings.ToUpper(strings.TrimSpace(*upd.Currency))
	}
	if upd.Language != nil && *upd.Language != "" {
		p.Language = strings.ToLower(strings.TrimSpace(*upd.Language))
	}

	if err := s.Store.Profiles().UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}

	return s.Store.Profiles().GetProfileByID(ctx, userID)
}
