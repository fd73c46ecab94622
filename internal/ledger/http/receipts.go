package http

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/internal/ledger/storage"
	"github.com/storefrontbuilder/ledger/pkg/httpx"
	"github.com/storefrontbuilder/ledger/pkg/ledgersdk"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

// maxReceiptBytes caps receipt uploads at 10 MiB.
const maxReceiptBytes = 10 << 20

// ReceiptHandler accepts receipt image uploads and serves stored objects.
type ReceiptHandler struct {
	TransactionService *service.TransactionService
	Storage            *storage.Store
}

// HandleUpload godoc
//
//	@Summary		Upload a receipt image
//	@Description	Multipart upload (field "file"). The object is stored under the user's namespace and its public URL returned, for attaching to a transaction.
//	@Tags			Receipts
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Receipt image"
//	@Success		201		{object}	ledgersdk.UploadResponse
//	@Failure		400		{object}	ledgersdk.APIError	"missing file or oversized body"
//	@Router			/v1/receipts [post].
func (h *ReceiptHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		ledgersdk.ErrUnauthorized.WriteError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		ledgersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ledgersdk.ErrInvalidRequest.WriteError(w)
		return
	}
	defer file.Close()

	url, err := h.TransactionService.UploadReceipt(ctx, userID, path.Ext(header.Filename), file)
	if err != nil {
		log.Error("receipt upload failed", "err", err, "user_id", userID)
		ledgersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ledgersdk.UploadResponse{URL: url})
}

// FilesHandler serves stored objects at /files/{bucket}/{path...}. URLs are
// unguessable only to the extent object paths are; receipts sit behind the
// user-id namespace the upload path created.
type FilesHandler struct {
	Storage *storage.Store
}

func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket := r.PathValue("bucket")
	objectPath := r.PathValue("path")

	rc, err := h.Storage.Open(bucket, objectPath)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound),
			errors.Is(err, storage.ErrUnknownBucket),
			errors.Is(err, storage.ErrBadPath):
			ledgersdk.ErrNotFound.WriteError(w)
		default:
			ledgersdk.ErrServerError.WriteError(w)
		}
		return
	}
	defer rc.Close()

	if ct := contentTypeForExt(path.Ext(objectPath)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, rc)
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
