package store

import (
	"context"
	"errors"
	"time"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop callers from accidentally opening
// transactions within transactions.
type Store interface {
	Users() Users
	Profiles() Profiles
	Categories() Categories
	Transactions() Transactions
	RefreshTokens() RefreshTokens
	EmailTokens() EmailTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during password sign-in and resend flows.
	// Emails are stored lowercase; callers pass them normalised.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// ConfirmEmail stamps email_confirmed_at and bumps updated_at.
	ConfirmEmail(ctx context.Context, userID string, at time.Time) error

	// SetConfirmationSent records when the last verification email went out,
	// used to throttle resends.
	SetConfirmationSent(ctx context.Context, userID string, at time.Time) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to profiles, tokens and transactions (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Profiles interface {
	// CreateProfile inserts a profile row keyed by the user id.
	// Returns ErrAlreadyExists when the row is already present, which
	// callers treat as success for idempotent provisioning.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// GetProfileByID returns the profile for a user.
	GetProfileByID(ctx context.Context, userID string) (domain.Profile, error)

	// UpdateProfile mutates the user-editable fields and bumps updated_at.
	UpdateProfile(ctx context.Context, p domain.Profile) error
}

type Categories interface {
	// CreateCategory inserts a new category (id is ULID).
	CreateCategory(ctx context.Context, c domain.Category) error

	// GetCategoryByID returns a category scoped to its owner.
	GetCategoryByID(ctx context.Context, userID, id string) (domain.Category, error)

	// ListCategories returns all of a user's categories ordered by name.
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)

	// DeleteCategory removes a category; transactions keep a NULL reference.
	DeleteCategory(ctx context.Context, userID, id string) error
}

// TransactionFilter narrows ListTransactions. Zero values mean "no bound".
type TransactionFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

type Transactions interface {
	// CreateTransaction appends a new entry. Entries are never updated or
	// deleted through the API, only inserted.
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// GetTransactionByID returns an entry scoped to its owner.
	GetTransactionByID(ctx context.Context, userID, id string) (domain.Transaction, error)

	// ListTransactions returns a user's entries newest-first, applying any
	// bounds in the filter.
	ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]domain.Transaction, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (e.g., password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type EmailTokens interface {
	// CreateEmailToken writes a new verification token (token_hash is the
	// fingerprint of the opaque link token).
	CreateEmailToken(ctx context.Context, t domain.EmailToken) error

	// GetEmailTokenByHash returns a token by hash. Used and expired tokens
	// are still returned so the caller can surface a precise outcome: a
	// consumed token for a confirmed account is not an unknown token.
	GetEmailTokenByHash(ctx context.Context, hash string) (domain.EmailToken, error)

	// GetLatestEmailTokenByEmail returns the newest token for an address,
	// used or not, for the code-entry path.
	GetLatestEmailTokenByEmail(ctx context.Context, email string, typ domain.OtpType) (domain.EmailToken, error)

	// MarkEmailTokenUsed sets used_at=now (transaction-friendly).
	MarkEmailTokenUsed(ctx context.Context, id string, at time.Time) error

	// InvalidateUserEmailTokens marks every outstanding token for a user as
	// used, so a resend leaves exactly one live token.
	InvalidateUserEmailTokens(ctx context.Context, userID string, typ domain.OtpType, at time.Time) error

	// DeleteExpiredEmailTokens is housekeeping.
	DeleteExpiredEmailTokens(ctx context.Context) error
}
