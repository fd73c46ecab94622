package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			// Verify token is unique (generate another and compare)
			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		a := FingerprintToken("some-token")
		b := FingerprintToken("some-token")
		require.Equal(t, a, b)
	})

	t.Run("differs per token", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("token-a"), FingerprintToken("token-b"))
	})

	t.Run("never exposes the raw token", func(t *testing.T) {
		require.NotContains(t, FingerprintToken("super-secret"), "super-secret")
	})
}
