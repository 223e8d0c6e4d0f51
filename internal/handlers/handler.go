package handlers

import (
	"encoding/json"
	"net/http"

	"cardreader/internal/batch"
	"cardreader/internal/logger"
	"cardreader/internal/store"
)

// Handler serves the card reader pages and API.
type Handler struct {
	Processor *batch.Processor
	Store     store.Store
	Tokens    *DownloadTokens
	Logger    logger.Logger
	// UploadDir receives one temporary folder per upload.
	UploadDir      string
	MaxUploadBytes int64
}

func writeJSONResp(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSONResp(w, status, map[string]any{"status": statusLabel(status), "message": msg})
}

func statusLabel(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad_Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusNotFound:
		return "Not_Found"
	case http.StatusConflict:
		return "No_Data"
	case http.StatusRequestEntityTooLarge:
		return "Too_Large"
	default:
		return "Server_Error"
	}
}
