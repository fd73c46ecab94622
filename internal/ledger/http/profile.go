package http

import (
	"errors"
	"net/http"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/pkg/httpx"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
	"github.com/storefrontbuilder/ledger/pkg/ledgersdk"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

func sdkProfile(p domain.Profile) ledgersdk.Profile {
	return ledgersdk.Profile{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Currency:  p.Currency,
		Language:  p.Language,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// HandleProvision godoc
//
//	@Summary		Provision the profile row for the authenticated user
//	@Description	Creates the profile with default currency USD and language en. A repeat call returns 409 already_exists; clients treat that as success, the existing row is never touched.
//	@Tags			Profiles
//	@Security		BearerAuth
//	@Produce		json
//	@Success		201	{object}	ledgersdk.Profile	"created"
//	@Failure		401	{object}	ledgersdk.APIError
//	@Failure		409	{object}	ledgersdk.APIError	"already provisioned"
//	@Router			/v1/profiles [post].
func (h *ProfileHandler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	user := domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.FullName,
	}

	// The uniqueness conflict surfaces as 409; provisioning clients treat
	// it as a benign no-op.
	if _, err := h.ProfileService.Get(ctx, user.ID); err == nil {
		ledgersdk.ErrProfileExists.WriteError(w)
		return
	}

	p, err := h.ProfileService.Provision(ctx, user)
	if err != nil {
		log.Error("profile provisioning failed", "err", err, "user_id", user.ID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sdkProfile(p))
}

// HandleGet godoc
//
//	@Summary		Get the authenticated user's profile
//	@Tags			Profiles
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	ledgersdk.Profile
//	@Failure		404	{object}	ledgersdk.APIError	"not provisioned yet"
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	p, err := h.ProfileService.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			ledgersdk.ErrNotFound.WriteError(w)
			return
		}
		log.Error("profile fetch failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sdkProfile(p))
}

// HandleUpdate godoc
//
//	@Summary		Update the authenticated user's profile
//	@Description	Partial update: only fields present in the body are changed.
//	@Tags			Profiles
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.ProfileUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	ledgersdk.Profile
//	@Failure		404		{object}	ledgersdk.APIError
//	@Router			/v1/profile [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req ledgersdk.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.ProfileService.Update(ctx, userID, service.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Currency:  req.Currency,
		Language:  req.Language,
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			ledgersdk.ErrNotFound.WriteError(w)
			return
		}
		log.Error("profile update failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sdkProfile(p))
}
