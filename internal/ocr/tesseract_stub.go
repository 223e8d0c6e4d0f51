//go:build !tesseract

package ocr

import (
	"context"
	"errors"
)

// Tesseract is unavailable in builds without the tesseract tag.
type Tesseract struct{}

func NewTesseract() (*Tesseract, error) {
	return nil, errors.New("tesseract support not compiled in (build with -tags tesseract)")
}

func (*Tesseract) Recognize(context.Context, []byte, string, string) (string, error) {
	return "", errors.New("tesseract support not compiled in")
}
