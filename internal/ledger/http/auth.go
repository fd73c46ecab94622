package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/pkg/httpx"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
	"github.com/storefrontbuilder/ledger/pkg/ledgersdk"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

// AuthHandler serves the account lifecycle endpoints under /v1/auth.
type AuthHandler struct {
	AuthService *service.AuthService
}

func sdkUser(u domain.User) *ledgersdk.User {
	return &ledgersdk.User{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		EmailConfirmed: u.Confirmed(),
	}
}

func sdkSession(p *domain.TokenPair) *ledgersdk.TokenResponse {
	if p == nil {
		return nil
	}
	return &ledgersdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ledgersdk.ErrInvalidJSONBody.WriteError(w)
		return false
	}
	return true
}

// HandleSignUp godoc
//
//	@Summary		Register a new account
//	@Description	Creates an account and sends a verification email. The account cannot sign in until the email is confirmed, so no session is returned.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.SignUpRequest		true	"Registration payload"
//	@Success		201		{object}	ledgersdk.SessionResponse	"user; session omitted until confirmation"
//	@Failure		400		{object}	ledgersdk.APIError
//	@Failure		409		{object}	ledgersdk.APIError	"email already registered"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ledgersdk.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.SignUp(ctx, req.Email, req.Password, req.FullName, req.RedirectURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			ledgersdk.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrEmailTaken):
			ledgersdk.ErrEmailTaken.WriteError(w)
		default:
			log.Error("sign-up failed", "err", err)
			ledgersdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, ledgersdk.SessionResponse{
		User:    sdkUser(res.User),
		Message: "Check your email for a confirmation link.",
	})
}

// HandleSignIn godoc
//
//	@Summary		Sign in with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	ledgersdk.SessionResponse
//	@Failure		401		{object}	ledgersdk.APIError	"bad credentials"
//	@Failure		403		{object}	ledgersdk.APIError	"email not confirmed"
//	@Router			/v1/auth/signin [post].
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ledgersdk.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, user, err := h.AuthService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			ledgersdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrEmailNotConfirmed):
			ledgersdk.ErrEmailNotConfirmed.WriteError(w)
		default:
			log.Error("sign-in failed", "err", err)
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

// HandleRefresh godoc
//
//	@Summary		Rotate a refresh token
//	@Description	Revokes the presented refresh token and issues a fresh pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	ledgersdk.TokenResponse
//	@Failure		401		{object}	ledgersdk.APIError	"invalid, expired or revoked token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ledgersdk.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			ledgersdk.ErrInvalidRefresh.WriteError(w)
			return
		}
		log.Error("refresh failed", "err", err)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sdkSession(pair))
}

// HandleSignOut godoc
//
//	@Summary		Sign out
//	@Description	Revokes the refresh token. Unknown tokens are treated as already revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	ledgersdk.SignOutRequest	true	"Refresh token to revoke"
//	@Success		204		"signed out"
//	@Router			/v1/auth/signout [post].
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ledgersdk.SignOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.SignOut(ctx, req.RefreshToken); err != nil {
		log.Error("sign-out failed", "err", err)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSession godoc
//
//	@Summary		Get the current session's user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	ledgersdk.SessionResponse
//	@Failure		401	{object}	ledgersdk.APIError
//	@Router			/v1/auth/session [get].
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, ledgersdk.SessionResponse{
		User: &ledgersdk.User{
			ID:             claims.Subject,
			Email:          claims.Email,
			FullName:       claims.FullName,
			EmailConfirmed: claims.EmailConfirmed,
		},
	})
}
