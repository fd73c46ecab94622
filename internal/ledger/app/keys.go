package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/storefrontbuilder/ledger/pkg/idx"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
)

// InitSigningKeys builds the token signing key and the matching verifier.
//
// When LEDGER_SIGNING_KEY_FILE points at a PKCS8 Ed25519 PEM file the key is
// loaded from disk and tokens survive restarts. Otherwise an ephemeral
// keypair is generated: after a restart every outstanding access token is
// invalid and clients re-authenticate through their refresh token.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.KeySet, jwtx.Signer, jwtx.Verifier, error) {
	var signer jwtx.Signer

	if cfg.SigningKeyFile != "" {
		pemKey, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read signing key: %w", err)
		}

		signer, err = jwtx.NewSignerEdDSA(idx.New().String(), pemKey)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load signing key: %w", err)
		}

		logger.Info("signing key loaded", "path", cfg.SigningKeyFile, "kid", signer.KID())
	} else {
		var err error
		signer, err = jwtx.NewEphemeralSignerEdDSA(idx.New().String())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("generate signing key: %w", err)
		}

		logger.Info("generated ephemeral signing key", "kid", signer.KID())
		logger.Warn("all existing access tokens are now invalid due to key rotation on startup")
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, nil, fmt.Errorf("register signing key: %w", err)
	}

	verifier := jwtx.NewVerifierEdDSA(keys, cfg.Issuer)
	return keys, signer, verifier, nil
}
