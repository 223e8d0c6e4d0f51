// Package batch runs every image of an upload through OCR and extraction,
// one image at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"cardreader/internal/archive"
	"cardreader/internal/extract"
	"cardreader/internal/logger"
	"cardreader/internal/models"
	"cardreader/internal/ocr"
)

// DefaultDuplicateThreshold is the Jaro-Winkler score at which two names are reported as one person.
const DefaultDuplicateThreshold = 0.92

type Processor struct {
	Recognizer ocr.Recognizer
	Extractor  extract.Extractor
	Language   string
	Logger     logger.Logger
	// DuplicateThreshold defaults to DefaultDuplicateThreshold when zero.
	DuplicateThreshold float64
}

// Process recognises the image entries in order. An image that cannot be
// read, recognised or extracted is recorded as skipped and never stops the
// batch.
func (p *Processor) Process(ctx context.Context, entries []archive.Entry) *models.Batch {
	b := &models.Batch{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Records:      []models.CardRecord{},
		Unrecognized: []string{},
		Statuses:     []models.ImageStatus{},
	}

	for entry := range archive.Images(entries) {
		rec, err := p.processOne(ctx, entry)
		if err != nil {
			p.Logger.Warn("skipping image", "batch", b.ID, "file", entry.Name, "error", err)
			b.Unrecognized = append(b.Unrecognized, entry.Name)
			b.Statuses = append(b.Statuses, models.ImageStatus{
				FileName: entry.Name,
				State:    models.StateSkipped,
				Message:  skipMessage(err),
			})
			continue
		}
		b.Records = append(b.Records, rec)
		b.Statuses = append(b.Statuses, models.ImageStatus{FileName: entry.Name, State: models.StateExtracted})
		p.Logger.Debug("extracted card", "batch", b.ID, "file", entry.Name)
	}

	threshold := p.DuplicateThreshold
	if threshold == 0 {
		threshold = DefaultDuplicateThreshold
	}
	b.Duplicates = FindDuplicates(b.Records, threshold)

	p.Logger.Info("batch processed", "batch", b.ID, "extracted", len(b.Records), "skipped", len(b.Unrecognized))
	return b
}

var errBlankText = errors.New("recognized text is empty")

func (p *Processor) processOne(ctx context.Context, entry archive.Entry) (models.CardRecord, error) {
	image, err := os.ReadFile(entry.Path)
	if err != nil {
		return models.CardRecord{}, fmt.Errorf("read image: %w", err)
	}

	text, err := p.Recognizer.Recognize(ctx, image, entry.Name, p.Language)
	if err != nil {
		return models.CardRecord{}, err
	}
	if strings.TrimSpace(text) == "" {
		return models.CardRecord{}, errBlankText
	}

	rec, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		return models.CardRecord{}, fmt.Errorf("extract fields: %w", err)
	}
	rec.SourceFileName = entry.Name
	return rec, nil
}

func skipMessage(err error) string {
	switch {
	case errors.Is(err, errBlankText), errors.Is(err, ocr.ErrNoText):
		return "No text could be recognized in this image."
	default:
		return "Text recognition failed for this image."
	}
}
