package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/pkg/httpx"
	"github.com/storefrontbuilder/ledger/pkg/ledgersdk"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

type TransactionHandler struct {
	TransactionService *service.TransactionService
}

func sdkTransaction(t domain.Transaction) ledgersdk.Transaction {
	return ledgersdk.Transaction{
		ID:              t.ID,
		CategoryID:      t.CategoryID,
		Amount:          t.Amount,
		Description:     t.Description,
		Type:            string(t.Type),
		InputMethod:     string(t.InputMethod),
		ReceiptImageURL: t.ReceiptImageURL,
		TransactionDate: t.TransactionDate,
		CreatedAt:       t.CreatedAt,
	}
}

// HandleList godoc
//
//	@Summary		List transactions
//	@Description	Newest first. Optional from/to bounds (RFC 3339 or YYYY-MM-DD) and a result limit.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			from	query	string	false	"Lower date bound"
//	@Param			to		query	string	false	"Upper date bound"
//	@Param			limit	query	int		false	"Max results"
//	@Success		200		{array}	ledgersdk.Transaction
//	@Failure		400		{object}	ledgersdk.APIError	"unparseable bound"
//	@Router			/v1/transactions [get].
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	var f store.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			ledgersdk.ErrInvalidRequest.WriteError(w)
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			ledgersdk.ErrInvalidRequest.WriteError(w)
			return
		}
		// A bare date as upper bound means "through that whole day".
		if len(v) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ledgersdk.ErrInvalidRequest.WriteError(w)
			return
		}
		f.Limit = n
	}

	txs, err := h.TransactionService.List(ctx, userID, f)
	if err != nil {
		log.Error("transaction list failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]ledgersdk.Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, sdkTransaction(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Record a transaction
//	@Description	Appends an entry to the ledger. Entries are immutable once recorded.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.TransactionCreateRequest	true	"Entry"
//	@Success		201		{object}	ledgersdk.Transaction
//	@Failure		422		{object}	ledgersdk.APIError	"non-positive amount, bad type, or foreign category"
//	@Router			/v1/transactions [post].
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req ledgersdk.TransactionCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.TransactionService.Create(ctx, userID, service.TransactionInput{
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Description:     req.Description,
		Type:            domain.EntryType(req.Type),
		InputMethod:     domain.InputMethod(req.InputMethod),
		ReceiptImageURL: req.ReceiptImageURL,
		TransactionDate: req.TransactionDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransaction) {
			ledgersdk.ErrValidation.WriteError(w)
			return
		}
		log.Error("transaction create failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sdkTransaction(tx))
}

// HandleParse godoc
//
//	@Summary		Parse a voice transcript into a transaction draft
//	@Description	Extracts amount, type and description. Nothing is persisted; the client confirms the draft with a create call.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgersdk.ParseRequest	true	"Transcript"
//	@Success		200		{object}	ledgersdk.ParseResponse
//	@Failure		422		{object}	ledgersdk.APIError	"no amount found"
//	@Router			/v1/transactions/parse [post].
func (h *TransactionHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := httpx.UserIDFromContext(ctx); !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req ledgersdk.ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.TransactionService.ParseVoice(ctx, req.Transcript)
	if err != nil {
		ledgersdk.ErrValidation.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ledgersdk.ParseResponse{
		Amount:      d.Amount,
		Type:        string(d.Type),
		Description: d.Description,
	})
}

// HandleStats godoc
//
//	@Summary		Ledger totals
//	@Description	Total income, total expenses, net profit and entry count over the whole ledger.
//	@Tags			Stats
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	ledgersdk.Stats
//	@Router			/v1/stats [get].
func (h *TransactionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	stats, err := h.TransactionService.Stats(ctx, userID)
	if err != nil {
		log.Error("stats failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ledgersdk.Stats{
		TotalIncome:      stats.TotalIncome,
		TotalExpenses:    stats.TotalExpenses,
		NetProfit:        stats.NetProfit,
		TransactionCount: stats.TransactionCount,
	})
}

// HandleDaily godoc
//
//	@Summary		Daily income/expense buckets for the dashboard chart
//	@Description	One entry per calendar day, chronological, zero-filled. Defaults to the last 7 days (today inclusive).
//	@Tags			Stats
//	@Security		BearerAuth
//	@Produce		json
//	@Param			days	query	int	false	"Window size in days"	default(7)
//	@Success		200		{array}	ledgersdk.DayBucket
//	@Router			/v1/stats/daily [get].
func (h *TransactionHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			ledgersdk.ErrInvalidRequest.WriteError(w)
			return
		}
		days = n
	}

	buckets, err := h.TransactionService.Daily(ctx, userID, days, time.Now())
	if err != nil {
		log.Error("daily stats failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]ledgersdk.DayBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, ledgersdk.DayBucket{
			Date:    b.Date.Format("2006-01-02"),
			Income:  b.Income,
			Expense: b.Expense,
			Profit:  b.Profit,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func parseDateParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
