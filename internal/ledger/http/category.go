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

type CategoryHandler struct {
	CategoryService *service.CategoryService
}

func sdkCategory(c domain.Category) ledgersdk.Category {
	return ledgersdk.Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}

// HandleList godoc
//
//	@Summary		List the user's categories
//	@Tags			Categories
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	ledgersdk.Category
//	@Router			/v1/categories [get].
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	cats, err := h.CategoryService.List(ctx, userID)
	if err != nil {
		log.Error("category list failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]ledgersdk.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, sdkCategory(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Create a category
//	@Tags			Categories
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.CategoryCreateRequest	true	"Category"
//	@Success		201		{object}	ledgersdk.Category
//	@Failure		422		{object}	ledgersdk.APIError	"missing name or bad type"
//	@Router			/v1/categories [post].
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req ledgersdk.CategoryCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.CategoryService.Create(ctx, userID, req.Name, domain.EntryType(req.Type), req.Color)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			ledgersdk.ErrValidation.WriteError(w)
			return
		}
		log.Error("category create failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sdkCategory(c))
}

// HandleDelete godoc
//
//	@Summary		Delete a category
//	@Description	Transactions referencing the category keep a null reference; they are never deleted.
//	@Tags			Categories
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Category id"
//	@Success		204	"deleted"
//	@Failure		404	{object}	ledgersdk.APIError
//	@Router			/v1/categories/{id} [delete].
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	if err := h.CategoryService.Delete(ctx, userID, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			ledgersdk.ErrNotFound.WriteError(w)
			return
		}
		log.Error("category delete failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
