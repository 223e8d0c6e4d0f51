package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cardreader/internal/export"
	"cardreader/internal/models"
)

// ExportXLSX: GET /api/v1/batches/{id}/export.xlsx?token=...
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.XLSX, export.XLSXFileName, export.XLSXContentType)
}

// ExportCSV: GET /api/v1/batches/{id}/export.csv?token=...
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.CSV, export.CSVFileName, export.CSVContentType)
}

func (h *Handler) serveExport(
	w http.ResponseWriter,
	r *http.Request,
	write func(io.Writer, []models.CardRecord) error,
	fileName, contentType string,
) {
	b, ok := h.authorizedBatch(w, r)
	if !ok {
		return
	}
	if b.Empty() {
		writeJSONError(w, http.StatusConflict, noDataWarning)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, b.Records); err != nil {
		h.Logger.Error("export failed", "batch", b.ID, "format", contentType, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to build spreadsheet")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
