package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cardreader/internal/models"
	"cardreader/internal/store"
)

const noDataWarning = "No data was extracted from the uploaded cards."

type batchResp struct {
	Status   string        `json:"status"`
	Warning  string        `json:"warning,omitempty"`
	Batch    *models.Batch `json:"batch"`
	Download *downloadURLs `json:"download,omitempty"`
}

type downloadURLs struct {
	XLSX string `json:"xlsx"`
	CSV  string `json:"csv"`
}

// CreateBatch: POST /api/v1/batches
// multipart/form-data with a ZIP in field "cards"
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.processUpload(w, r)
	if err != nil {
		status, msg := h.uploadStatus(err)
		writeJSONError(w, status, msg)
		return
	}
	resp := batchResponse(b)
	// Download links are only handed out to the uploader.
	if !b.Empty() {
		token, err := h.Tokens.Sign(b.ID)
		if err != nil {
			h.Logger.Error("failed to sign download token", "batch", b.ID, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "failed to sign download links")
			return
		}
		resp.Download = newDownloadURLs(b.ID, token)
	}
	writeJSONResp(w, http.StatusCreated, resp)
}

// GetBatch: GET /api/v1/batches/{id}?token=...
// Needs the download token issued with the batch and never mints a new one.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	b, ok := h.authorizedBatch(w, r)
	if !ok {
		return
	}
	writeJSONResp(w, http.StatusOK, batchResponse(b))
}

func batchResponse(b *models.Batch) batchResp {
	if b.Empty() {
		return batchResp{Status: "No_Data", Warning: noDataWarning, Batch: b}
	}
	return batchResp{Status: "Processed", Batch: b}
}

func newDownloadURLs(batchID, token string) *downloadURLs {
	return &downloadURLs{
		XLSX: fmt.Sprintf("/api/v1/batches/%s/export.xlsx?token=%s", batchID, token),
		CSV:  fmt.Sprintf("/api/v1/batches/%s/export.csv?token=%s", batchID, token),
	}
}

// loadBatch fetches the {id} batch, writing the error response itself when
// the batch cannot be returned.
func (h *Handler) loadBatch(w http.ResponseWriter, r *http.Request) (*models.Batch, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing id")
		return nil, false
	}
	b, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "batch not found or expired")
		return nil, false
	}
	if err != nil {
		h.Logger.Error("failed to load batch", "batch", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load batch")
		return nil, false
	}
	return b, true
}

// authorizedBatch is loadBatch behind a download token check.
func (h *Handler) authorizedBatch(w http.ResponseWriter, r *http.Request) (*models.Batch, bool) {
	if err := h.Tokens.Verify(r.URL.Query().Get("token"), chi.URLParam(r, "id")); err != nil {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	return h.loadBatch(w, r)
}
