package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"cardreader/internal/export"
	"cardreader/internal/models"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageRow struct {
	Record    models.CardRecord
	QRCodeURL string
}

type pageData struct {
	Error      string
	Warning    string
	Batch      *models.Batch
	Columns    []string
	Rows       []pageRow
	Duplicates []models.DuplicatePair
	Download   *downloadURLs
}

// Index: GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageData{})
}

// Upload: POST /upload
// Form variant of CreateBatch that renders the results page.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	b, err := h.processUpload(w, r)
	if err != nil {
		status, msg := h.uploadStatus(err)
		h.render(w, status, pageData{Error: msg})
		return
	}

	data := pageData{Batch: b, Columns: export.Columns}
	if b.Empty() {
		data.Warning = noDataWarning
		h.render(w, http.StatusOK, data)
		return
	}

	token, err := h.Tokens.Sign(b.ID)
	if err != nil {
		h.Logger.Error("failed to sign download token", "batch", b.ID, "error", err)
		h.render(w, http.StatusInternalServerError, pageData{Error: "failed to prepare the download"})
		return
	}
	data.Download = newDownloadURLs(b.ID, token)
	for i, rec := range b.Records {
		data.Rows = append(data.Rows, pageRow{
			Record:    rec,
			QRCodeURL: fmt.Sprintf("/api/v1/batches/%s/cards/%d/qrcode?token=%s", b.ID, i, token),
		})
	}
	// Shown 1-based to match the table.
	for _, d := range b.Duplicates {
		data.Duplicates = append(data.Duplicates, models.DuplicatePair{First: d.First + 1, Second: d.Second + 1, Similarity: d.Similarity})
	}
	h.render(w, http.StatusOK, data)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTmpl.Execute(w, data); err != nil {
		h.Logger.Error("failed to render page", "error", err)
	}
}
