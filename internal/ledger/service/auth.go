package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/queue"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/pkg/cryptox"
	"github.com/storefrontbuilder/ledger/pkg/idx"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrEmailNotConfirmed  = errors.New("email_not_confirmed")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidRequest     = errors.New("invalid_request")
)

const QueueExchange = "ledger.events"

// AuthService owns account lifecycle: sign-up, password sign-in, token
// refresh rotation and sign-out.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Publisher  queue.Publisher
	Verifier   *VerificationService
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SignUpResult reports what the caller should do next: a confirmed user
// gets tokens immediately, an unconfirmed one is told to check their email.
type SignUpResult struct {
	User                 domain.User
	ConfirmationRequired bool
}

// SignUp registers a new account and kicks off email verification. The
// account stays unconfirmed (and cannot sign in) until the emailed token or
// code is redeemed.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName, redirectURL string) (SignUpResult, error) {
	l := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return SignUpResult{}, ErrInvalidRequest
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return SignUpResult{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	}

	// 1. Create the account. A duplicate email is reported as taken, not
	//    as a storage error.
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return SignUpResult{}, ErrEmailTaken
		}
		return SignUpResult{}, err
	}

	// 2. Issue the verification email. Failure here is logged but does not
	//    undo the registration; the user can request a resend.
	if err := s.Verifier.Issue(ctx, user, redirectURL); err != nil {
		l.Error("failed to issue verification",
			slog.Any("error", err),
			slog.String("user_id", user.ID),
		)
	}

	// 3. Announce the registration.
	if err := s.Publisher.Publish(ctx, QueueExchange, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName,
	}, slogx.RequestIDFromContext(ctx)); err != nil {
		l.Warn("failed to publish user.registered", slog.Any("error", err))
	}

	l.Info("user signed up", slog.String("user_id", user.ID))

	return SignUpResult{User: user, ConfirmationRequired: true}, nil
}

// SignIn implements the password grant. The password is always checked
// before the confirmation state so an unconfirmed account cannot be probed
// without knowing its password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.TokenPair, domain.User, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	email = normalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidCredentials
		}
		return nil, domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("sign-in password mismatch", slog.String("user_id", user.ID))
		return nil, domain.User{}, ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, domain.User{}, ErrEmailNotConfirmed
	}

	pair, err := s.issueTokens(ctx, user, now)
	if err != nil {
		return nil, domain.User{}, err
	}

	l.Info("user signed in", slog.String("user_id", user.ID))
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued atomically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	now := time.Now()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}
	fp := cryptox.FingerprintToken(refreshToken)

	var result *domain.TokenPair

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		stored, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if stored.Revoked || now.After(stored.ExpiresAt) {
			return ErrInvalidRefresh
		}

		user, err := tx.Users().GetUserByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}

		result, err = s.mintPair(ctx, tx, user, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SignOut revokes the presented refresh token. Unknown tokens are treated
// as already signed out.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshToken))
}

// issueTokens mints a token pair outside any existing transaction.
func (s *AuthService) issueTokens(ctx context.Context, user domain.User, now time.Time) (*domain.TokenPair, error) {
	var result *domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		result, err = s.mintPair(ctx, tx, user, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AuthService) mintPair(ctx context.Context, tx store.Tx, user domain.User, now time.Time) (*domain.TokenPair, error) {
	claims := jwtx.NewAccessClaims(user.ID, user.Email, user.FullName, user.Confirmed(), s.AccessTTL, s.Issuer, now)
	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	refresh := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
