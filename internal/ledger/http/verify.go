package http

import (
	"errors"
	"net/http"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/pkg/httpx"
	"github.com/storefrontbuilder/ledger/pkg/ledgersdk"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

// VerifyHandler serves email confirmation: redeeming link tokens and codes,
// and resending verification emails.
type VerifyHandler struct {
	VerificationService *service.VerificationService
}

// HandleVerify godoc
//
//	@Summary		Redeem an email verification token
//	@Description	Accepts either the link token (token_hash) or an email+code pair. On success the account is confirmed and a signed-in session returned.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.VerifyRequest	true	"Verification payload"
//	@Success		200		{object}	ledgersdk.SessionResponse
//	@Failure		401		{object}	ledgersdk.APIError	"invalid or used token"
//	@Failure		409		{object}	ledgersdk.APIError	"email already confirmed"
//	@Failure		410		{object}	ledgersdk.APIError	"token expired"
//	@Router			/v1/auth/verify [post].
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ledgersdk.VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Only email confirmation exists today; an explicit different type is a
	// caller bug, not an unknown token.
	if req.Type != "" && req.Type != string(domain.OtpTypeEmail) {
		ledgersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var (
		pair *domain.TokenPair
		user domain.User
		err  error
	)
	switch {
	case req.TokenHash != "":
		pair, user, err = h.VerificationService.Verify(ctx, req.TokenHash)
	case req.Email != "" && req.Code != "":
		pair, user, err = h.VerificationService.VerifyCode(ctx, req.Email, req.Code)
	default:
		ledgersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyConfirmed):
			ledgersdk.ErrAlreadyConfirmed.WriteError(w)
		case errors.Is(err, service.ErrOTPExpired):
			ledgersdk.ErrOTPExpired.WriteError(w)
		case errors.Is(err, service.ErrOTPInvalid):
			ledgersdk.ErrOTPInvalid.WriteError(w)
		default:
			log.Error("verification failed", "err", err)
			ledgersdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.SessionResponse{
		User:    sdkUser(user),
		Session: sdkSession(pair),
	})
}

// HandleResend godoc
//
//	@Summary		Resend the verification email
//	@Description	Issues a fresh verification email for an unconfirmed account, invalidating earlier links. Rate limited per account.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	ledgersdk.ResendRequest	true	"Address to resend to"
//	@Success		202		"email queued (also returned for unknown addresses)"
//	@Failure		409		{object}	ledgersdk.APIError	"already confirmed"
//	@Failure		429		{object}	ledgersdk.APIError	"resend throttled"
//	@Router			/v1/auth/resend [post].
func (h *VerifyHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ledgersdk.ResendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Type != "" && req.Type != string(domain.OtpTypeEmail) {
		ledgersdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" {
		ledgersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.VerificationService.Resend(ctx, req.Email, req.RedirectURL); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyConfirmed):
			ledgersdk.ErrAlreadyConfirmed.WriteError(w)
		case errors.Is(err, service.ErrResendThrottled):
			ledgersdk.ErrResendThrottled.WriteError(w)
		case errors.Is(err, service.ErrOTPInvalid):
			// Unknown address. Answer as if queued so the endpoint cannot
			// be used to probe which emails have accounts.
			w.WriteHeader(http.StatusAccepted)
		default:
			log.Error("resend failed", "err", err)
			ledgersdk.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
