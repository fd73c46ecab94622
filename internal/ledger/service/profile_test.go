package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision_DefaultsAndIdempotency(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)

	p, err := ts.profiles.Provision(ctx, res.User)
	require.NoError(t, err)

	assert.Equal(t, res.User.ID, p.ID)
	assert.Equal(t, "a@b.com", p.Email)
	assert.Equal(t, "Alice", p.FullName)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "en", p.Language)

	// Mutate the row, then provision again: the second call must be a
	// benign no-op that returns the existing row unchanged.
	euro := "EUR"
	_, err = ts.profiles.Update(ctx, res.User.ID, ProfileUpdate{Currency: &euro})
	require.NoError(t, err)

	again, err := ts.profiles.Provision(ctx, res.User)
	require.NoError(t, err)
	assert.Equal(t, "EUR", again.Currency)
}

func TestProfileUpdate_PartialFields(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	res, err := ts.auth.SignUp(ctx, "a@b.com", "hunter2!", "Alice", "")
	require.NoError(t, err)
	_, err = ts.profiles.Provision(ctx, res.User)
	require.NoError(t, err)

	name := "  Alice Cooper "
	lang := "ES"
	p, err := ts.profiles.Update(ctx, res.User.ID, ProfileUpdate{FullName: &name, Language: &lang})
	require.NoError(t, err)

	assert.Equal(t, "Alice Cooper", p.FullName)
	assert.Equal(t, "es", p.Language)
	// Untouched fields keep their values.
	assert.Equal(t, "USD", p.Currency)
}

func TestProfileGet_Missing(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.profiles.Get(context.Background(), "no-such-user")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
