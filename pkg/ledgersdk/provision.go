package ledgersdk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// ProfileProvisioner makes sure a signed-in account has a profile row.
//
// Provisioning is idempotent: the server answers 409 already_exists when the
// profile is already there, and the provisioner treats that as success. Any
// other failure is reported so the caller can decide whether to retry, but a
// missing profile never blocks a sign-in.
type ProfileProvisioner struct {
	Logger *slog.Logger
}

// Ensure provisions the session's profile if it does not exist yet.
func (p *ProfileProvisioner) Ensure(ctx context.Context, session *Session) error {
	profile, err := session.ProvisionProfile(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict && apiErr.Code == "already_exists" {
			p.log().DebugContext(ctx, "profile already provisioned")
			return nil
		}
		return err
	}

	p.log().InfoContext(ctx, "profile provisioned",
		"currency", profile.Currency,
		"language", profile.Language,
	)
	return nil
}

func (p *ProfileProvisioner) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
