package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"cardreader/internal/models"
)

// GET /api/v1/batches/{id}/cards/{index}/qrcode?token=...
// Returns a PNG QR code holding the card as a vCard.
func (h *Handler) GetCardQRCode(w http.ResponseWriter, r *http.Request) {
	b, ok := h.authorizedBatch(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(b.Records) {
		writeJSONError(w, http.StatusNotFound, "card not found")
		return
	}

	png, err := qrcode.Encode(vCard(b.Records[idx]), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

var vCardEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

// vCard renders rec as a vCard 3.0; empty fields are left out.
func vCard(rec models.CardRecord) string {
	var sb strings.Builder
	sb.WriteString("BEGIN:VCARD\r\nVERSION:3.0\r\n")
	line := func(prop, value string) {
		if value == "" {
			return
		}
		sb.WriteString(prop)
		sb.WriteByte(':')
		sb.WriteString(vCardEscaper.Replace(value))
		sb.WriteString("\r\n")
	}
	line("FN", rec.Name)
	if rec.Name == "" {
		sb.WriteString("FN:\r\n")
	}
	line("TITLE", rec.Designation)
	line("ORG", rec.Airline)
	line("EMAIL", rec.Email)
	line("TEL", rec.Mobile)
	if rec.Address != "" {
		sb.WriteString("ADR:;;" + vCardEscaper.Replace(rec.Address) + ";;;;\r\n")
	}
	sb.WriteString("END:VCARD\r\n")
	return sb.String()
}
