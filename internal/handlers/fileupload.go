package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"sort"
	"strings"

	"cardreader/internal/archive"
	"cardreader/internal/models"
)

const archiveField = "cards"

var alternativeFields = []string{"file", "archive", "zip", "upload", "cards[]", "files[]"}

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

// processUpload reads the archive from the multipart request, runs the batch
// and caches the result.
func (h *Handler) processUpload(w http.ResponseWriter, r *http.Request) (*models.Batch, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &uploadError{http.StatusRequestEntityTooLarge, fmt.Sprintf("archive exceeds %d MB", h.MaxUploadBytes>>20)}
		}
		return nil, &uploadError{http.StatusBadRequest, "failed to parse form"}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := archiveFile(r)
	if err != nil {
		return nil, &uploadError{http.StatusBadRequest, fmt.Sprintf("missing file field '%s' (send multipart/form-data with a .zip of card images)", archiveField)}
	}
	defer file.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	dir, err := os.MkdirTemp(h.UploadDir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create batch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	entries, err := archive.Expand(file, header.Size, dir)
	if errors.Is(err, archive.ErrInvalidArchive) {
		return nil, &uploadError{http.StatusBadRequest, "the uploaded file is not a valid ZIP archive"}
	}
	if err != nil {
		return nil, err
	}
	h.Logger.Info("archive expanded", "file", header.Filename, "entries", len(entries))

	b := h.Processor.Process(r.Context(), entries)
	if err := h.Store.Save(r.Context(), b); err != nil {
		return nil, fmt.Errorf("cache batch: %w", err)
	}
	return b, nil
}

// archiveFile prefers the "cards" field, then common alternatives, then the
// first file field present.
func archiveFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if f, h, err := r.FormFile(archiveField); err == nil {
		return f, h, nil
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		return nil, nil, http.ErrMissingFile
	}

	available := make([]string, 0, len(r.MultipartForm.File))
	for k := range r.MultipartForm.File {
		available = append(available, k)
	}
	sort.Strings(available)
	for _, alt := range alternativeFields {
		for _, k := range available {
			if strings.EqualFold(k, alt) {
				return r.FormFile(k)
			}
		}
	}
	return r.FormFile(available[0])
}

// uploadStatus maps a processUpload error to a status code and message.
func (h *Handler) uploadStatus(err error) (int, string) {
	var ue *uploadError
	if errors.As(err, &ue) {
		return ue.status, ue.msg
	}
	h.Logger.Error("upload failed", "error", err)
	return http.StatusInternalServerError, "failed to process the uploaded archive"
}
