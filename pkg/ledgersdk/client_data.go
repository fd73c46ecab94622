package ledgersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// postAuthJSON sends a JSON body to an authenticated endpoint.
func (s *Session) postAuthJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	return s.doAuthRequest(ctx, method, path, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
}

// ProvisionProfile creates the caller's profile row with default settings.
// A 409 already_exists response means the profile was provisioned earlier;
// use ProfileProvisioner to treat that as benign.
func (s *Session) ProvisionProfile(ctx context.Context) (*Profile, error) {
	resp, err := s.postAuthJSON(ctx, http.MethodPost, "/v1/profiles", struct{}{})
	if err != nil {
		return nil, err
	}

	var out Profile
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// Profile fetches the caller's profile.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/profile", nil, nil)
	if err != nil {
		return nil, err
	}

	var out Profile
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// UpdateProfile applies a partial update; nil fields are left untouched.
func (s *Session) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*Profile, error) {
	resp, err := s.postAuthJSON(ctx, http.MethodPatch, "/v1/profile", req)
	if err != nil {
		return nil, err
	}

	var out Profile
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// Categories lists the caller's categories.
func (s *Session) Categories(ctx context.Context) ([]Category, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/categories", nil, nil)
	if err != nil {
		return nil, err
	}

	var out []Category
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out, nil
}

// CreateCategory creates a new income or expense category.
func (s *Session) CreateCategory(ctx context.Context, req CategoryCreateRequest) (*Category, error) {
	resp, err := s.postAuthJSON(ctx, http.MethodPost, "/v1/categories", req)
	if err != nil {
		return nil, err
	}

	var out Category
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteCategory removes a category. Transactions keep their rows; the
// category reference is cleared server-side.
func (s *Session) DeleteCategory(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/categories/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// TransactionListOptions narrows a transaction listing. Zero values mean
// "no bound" and the server's default limit applies.
type TransactionListOptions struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Transactions lists the caller's transactions, newest first.
func (s *Session) Transactions(ctx context.Context, opts TransactionListOptions) ([]Transaction, error) {
	q := url.Values{}
	if !opts.From.IsZero() {
		q.Set("from", opts.From.Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		q.Set("to", opts.To.Format(time.RFC3339))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/v1/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out []Transaction
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out, nil
}

// CreateTransaction records a new transaction.
func (s *Session) CreateTransaction(ctx context.Context, req TransactionCreateRequest) (*Transaction, error) {
	resp, err := s.postAuthJSON(ctx, http.MethodPost, "/v1/transactions", req)
	if err != nil {
		return nil, err
	}

	var out Transaction
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// ParseVoice turns a speech transcript into a transaction draft. Nothing is
// persisted; confirm the draft with CreateTransaction.
func (s *Session) ParseVoice(ctx context.Context, transcript string) (*ParseResponse, error) {
	resp, err := s.postAuthJSON(ctx, http.MethodPost, "/v1/transactions/parse", ParseRequest{
		Transcript: transcript,
	})
	if err != nil {
		return nil, err
	}

	var out ParseResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// Stats returns income, expense and profit totals over all transactions.
func (s *Session) Stats(ctx context.Context) (*Stats, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/stats", nil, nil)
	if err != nil {
		return nil, err
	}

	var out Stats
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// Daily returns per-day totals for the trailing window, zero-filled so
// charts always get a full set of buckets. days of 0 uses the server default.
func (s *Session) Daily(ctx context.Context, days int) ([]DayBucket, error) {
	path := "/v1/stats/daily"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out []DayBucket
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out, nil
}

// UploadReceipt uploads a receipt image and returns its public URL.
func (s *Session) UploadReceipt(ctx context.Context, filename string, file io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/receipts", &buf, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var out UploadResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}
