package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEdDSASignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSignerEdDSA("test-key-001")
	require.NoError(t, err)
	require.NoError(t, signer.Validate())

	keys := NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	require.True(t, keys.IsReady())

	verifier := NewVerifierEdDSA(keys, "ledger-test")

	t.Run("round trips claims", func(t *testing.T) {
		claims := NewAccessClaims(
			"user-123", "a@b.com", "Test User", true,
			time.Minute, "ledger-test", time.Now().UTC(),
		)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		got, err := verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-123", got.Subject)
		require.Equal(t, "a@b.com", got.Email)
		require.True(t, got.EmailConfirmed)
		require.NoError(t, got.ValidateExpiry())
	})

	t.Run("rejects tokens from an unknown key", func(t *testing.T) {
		other, err := NewEphemeralSignerEdDSA("rogue-key")
		require.NoError(t, err)

		claims := NewAccessClaims(
			"user-123", "a@b.com", "", false,
			time.Minute, "ledger-test", time.Now().UTC(),
		)
		token, err := other.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("rejects issuer mismatch", func(t *testing.T) {
		claims := NewAccessClaims(
			"user-123", "a@b.com", "", false,
			time.Minute, "someone-else", time.Now().UTC(),
		)
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("expired claims fail expiry validation", func(t *testing.T) {
		claims := NewAccessClaims(
			"user-123", "a@b.com", "", false,
			-time.Minute, "ledger-test", time.Now().UTC().Add(-time.Hour),
		)
		require.ErrorIs(t, claims.ValidateExpiry(), ErrExpired)
	})
}

func TestJWKRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSignerEdDSA("jwk-key")
	require.NoError(t, err)

	jwk := signer.PublicJWK()
	require.Equal(t, "OKP", jwk.Kty)
	require.Equal(t, "Ed25519", jwk.Crv)
	require.Equal(t, "jwk-key", jwk.Kid)

	keys := NewKeySet()
	require.NoError(t, keys.AddJWK(jwk))

	got, err := keys.Get("jwk-key")
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = keys.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)
}
