package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontbuilder/ledger/internal/ledger/queue"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/internal/ledger/store/drivers/sqlite"
	"github.com/storefrontbuilder/ledger/pkg/cryptox"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ledger-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testServices struct {
	store    store.Store
	auth     *AuthService
	verifier *VerificationService
	profiles *ProfileService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "ledger_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	signer, err := jwtx.NewEphemeralSignerEdDSA("test-key")
	require.NoError(t, err)

	profiles := &ProfileService{Store: s}
	verifier := &VerificationService{
		Store:     s,
		Publisher: queue.NewNoop(),
		BaseURL:   "http://localhost:8080",
	}
	auth := &AuthService{
		Store:      s,
		Signer:     signer,
		Publisher:  queue.NewNoop(),
		Verifier:   verifier,
		Issuer:     "http://localhost:8080",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	verifier.Auth = auth

	return &testServices{store: s, auth: auth, verifier: verifier, profiles: profiles}
}

func TestSignUp_RequiresConfirmation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "A@B.com", "hunter2!", "Alice", "")
	require.NoError(t, err)

	assert.True(t, res.ConfirmationRequired)
	assert.Equal(t, "a@b.com", res.User.Email)
	assert.False(t, res.User.Confirmed())

	// No profile row exists until the email is confirmed.
	_, err = ts.profiles.Get(ctx, res.User.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)

	_, err = ts.auth.SignUp(ctx, "a@b.com", "other-pass", "Mallory", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn_UnconfirmedRejected(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)

	_, _, err = ts.auth.SignIn(ctx, "a@b.com", "hunter2!")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)
}

func TestSignIn_WrongPassword(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)
	require.NoError(t, ts.store.Users().ConfirmEmail(ctx, res.User.ID, time.Now()))

	_, _, err = ts.auth.SignIn(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = ts.auth.SignIn(ctx, "nobody@b.com", "hunter2!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_ConfirmedIssuesTokens(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)
	require.NoError(t, ts.store.Users().ConfirmEmail(ctx, res.User.ID, time.Now()))

	pair, user, err := ts.auth.SignIn(ctx, "a@b.com", "hunter2!")
	require.NoError(t, err)

	assert.Equal(t, res.User.ID, user.ID)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRefresh_RotatesAndRevokesOld(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)
	require.NoError(t, ts.store.Users().ConfirmEmail(ctx, res.User.ID, time.Now()))

	pair, _, err := ts.auth.SignIn(ctx, "a@b.com", "hunter2!")
	require.NoError(t, err)

	rotated, err := ts.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token is now revoked and cannot be replayed.
	_, err = ts.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// The new one still works.
	_, err = ts.auth.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestSignOut_RevokesToken(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)
	require.NoError(t, ts.store.Users().ConfirmEmail(ctx, res.User.ID, time.Now()))

	pair, _, err := ts.auth.SignIn(ctx, "a@b.com", "hunter2!")
	require.NoError(t, err)

	require.NoError(t, ts.auth.SignOut(ctx, pair.RefreshToken))

	_, err = ts.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// Signing out twice (or with nothing) is not an error.
	assert.NoError(t, ts.auth.SignOut(ctx, pair.RefreshToken))
	assert.NoError(t, ts.auth.SignOut(ctx, ""))
}
