//go:build tesseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs recognition locally through libtesseract.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// NewTesseract returns the local engine. Build with -tags tesseract.
func NewTesseract() (*Tesseract, error) {
	return &Tesseract{clientFactory: gosseract.NewClient}, nil
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, _ string, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := t.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if language != "" {
		if err := c.SetLanguage(language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
