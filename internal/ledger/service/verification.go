package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp/hotp"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/queue"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/pkg/cryptox"
	"github.com/storefrontbuilder/ledger/pkg/idx"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

var (
	ErrOTPInvalid       = errors.New("otp_invalid")
	ErrOTPExpired       = errors.New("otp_expired")
	ErrAlreadyConfirmed = errors.New("already_confirmed")
	ErrResendThrottled  = errors.New("resend_throttled")
)

const (
	// DefaultOTPTTL is how long a verification link and code stay valid.
	DefaultOTPTTL = 24 * time.Hour

	// resendCooldown guards against hammering the email pipeline.
	resendCooldown = 60 * time.Second

	// hotpCounter is fixed: each token row carries its own secret, so the
	// counter never needs to advance.
	hotpCounter = 0
)

// VerificationService issues and redeems email confirmation tokens. Each
// email carries both a link (opaque token, stored by fingerprint) and a
// 6-digit code (HOTP over a per-token secret) for manual entry.
type VerificationService struct {
	Store     store.Store
	Publisher queue.Publisher
	Auth      *AuthService // set after construction; used to mint a session on verify
	BaseURL   string
	OTPTTL    time.Duration
}

// ttl returns the configured token lifetime. Any explicit non-zero value is
// honored, including negative ones, which mint already-expired tokens; the
// expiry tests lean on that.
func (s *VerificationService) ttl() time.Duration {
	if s.OTPTTL != 0 {
		return s.OTPTTL
	}
	return DefaultOTPTTL
}

// Issue creates a fresh verification token for the user, invalidating any
// earlier outstanding ones, and hands the link and code to the notify
// pipeline. redirectURL, when set, is embedded in the link so the
// verification page can send the user back where they came from.
func (s *VerificationService) Issue(ctx context.Context, user domain.User, redirectURL string) error {
	now := time.Now()
	l := slogx.FromContext(ctx)

	if user.Confirmed() {
		return ErrAlreadyConfirmed
	}

	linkToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	secret, err := newCodeSecret()
	if err != nil {
		return err
	}
	code, err := hotp.GenerateCode(secret, hotpCounter)
	if err != nil {
		return err
	}

	tok := domain.EmailToken{
		ID:         idx.New().String(),
		UserID:     user.ID,
		Email:      user.Email,
		TokenHash:  cryptox.FingerprintToken(linkToken),
		CodeSecret: secret,
		Type:       domain.OtpTypeEmail,
		ExpiresAt:  now.Add(s.ttl()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.EmailTokens().InvalidateUserEmailTokens(ctx, user.ID, domain.OtpTypeEmail, now); err != nil {
			return err
		}
		if err := tx.EmailTokens().CreateEmailToken(ctx, tok); err != nil {
			return err
		}
		return tx.Users().SetConfirmationSent(ctx, user.ID, now)
	})
	if err != nil {
		return err
	}

	if err := s.Publisher.Publish(ctx, QueueExchange, queue.KeyVerificationRequested, queue.VerificationRequested{
		UserID:    user.ID,
		Email:     user.Email,
		VerifyURL: s.verifyURL(linkToken, redirectURL),
		Code:      code,
		ExpiresAt: tok.ExpiresAt,
	}, slogx.RequestIDFromContext(ctx)); err != nil {
		l.Warn("failed to publish verification request", slog.Any("error", err))
	}

	l.Info("verification issued", slog.String("user_id", user.ID))
	return nil
}

// Verify redeems a verification link token. On success the account is
// confirmed, the token consumed, and a signed-in session returned.
func (s *VerificationService) Verify(ctx context.Context, linkToken string) (*domain.TokenPair, domain.User, error) {
	linkToken = strings.TrimSpace(linkToken)
	if linkToken == "" {
		return nil, domain.User{}, ErrOTPInvalid
	}
	hash := cryptox.FingerprintToken(linkToken)

	return s.redeem(ctx, func(tx store.Tx) (domain.EmailToken, error) {
		return tx.EmailTokens().GetEmailTokenByHash(ctx, hash)
	}, func(domain.EmailToken) error { return nil })
}

// VerifyCode redeems the 6-digit emailed code for the given address.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) (*domain.TokenPair, domain.User, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, domain.User{}, ErrOTPInvalid
	}

	return s.redeem(ctx, func(tx store.Tx) (domain.EmailToken, error) {
		return tx.EmailTokens().GetLatestEmailTokenByEmail(ctx, email, domain.OtpTypeEmail)
	}, func(tok domain.EmailToken) error {
		want, err := hotp.GenerateCode(tok.CodeSecret, hotpCounter)
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) != 1 {
			return ErrOTPInvalid
		}
		return nil
	})
}

// redeem is the shared verification path: look the token up, check it,
// confirm the account and mint a session, all in one transaction.
func (s *VerificationService) redeem(
	ctx context.Context,
	lookup func(tx store.Tx) (domain.EmailToken, error),
	check func(tok domain.EmailToken) error,
) (*domain.TokenPair, domain.User, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	var (
		pair *domain.TokenPair
		user domain.User
	)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		tok, err := lookup(tx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPInvalid
			}
			return err
		}

		u, err := tx.Users().GetUserByID(ctx, tok.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPInvalid
			}
			return err
		}

		// Already-confirmed wins over everything else: re-clicking a
		// consumed or expired link after confirming is common and should
		// not look like a failure.
		if u.Confirmed() {
			return ErrAlreadyConfirmed
		}
		// A used token on an unconfirmed account was invalidated by a
		// resend; only its replacement can confirm.
		if tok.UsedAt != nil {
			return ErrOTPInvalid
		}
		if now.After(tok.ExpiresAt) {
			return ErrOTPExpired
		}
		if err := check(tok); err != nil {
			return err
		}

		if err := tx.EmailTokens().MarkEmailTokenUsed(ctx, tok.ID, now); err != nil {
			return err
		}
		if err := tx.Users().ConfirmEmail(ctx, u.ID, now); err != nil {
			return err
		}
		u.EmailConfirmedAt = &now
		user = u

		pair, err = s.Auth.mintPair(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return nil, domain.User{}, err
	}

	if err := s.Publisher.Publish(ctx, QueueExchange, queue.KeyUserVerified, queue.UserVerified{
		UserID: user.ID,
		Email:  user.Email,
	}, slogx.RequestIDFromContext(ctx)); err != nil {
		l.Warn("failed to publish user.verified", slog.Any("error", err))
	}

	l.Info("email verified", slog.String("user_id", user.ID))
	return pair, user, nil
}

// Resend issues a new verification email for an unconfirmed account,
// rate-limited per account. Unknown addresses return ErrOTPInvalid so the
// endpoint cannot be used to enumerate accounts any faster than sign-up.
func (s *VerificationService) Resend(ctx context.Context, email, redirectURL string) error {
	now := time.Now()

	email = normalizeEmail(email)
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOTPInvalid
		}
		return err
	}

	if user.Confirmed() {
		return ErrAlreadyConfirmed
	}
	if user.ConfirmationSent != nil && now.Sub(*user.ConfirmationSent) < resendCooldown {
		return ErrResendThrottled
	}

	return s.Issue(ctx, user, redirectURL)
}

func (s *VerificationService) verifyURL(linkToken, redirectURL string) string {
	q := url.Values{}
	q.Set("token_hash", linkToken)
	q.Set("type", string(domain.OtpTypeEmail))
	if redirectURL != "" {
		q.Set("redirect_to", redirectURL)
	}
	return strings.TrimRight(s.BaseURL, "/") + "/auth/confirm?" + q.Encode()
}

func newCodeSecret() (string, error) {
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b[:]), nil
}
