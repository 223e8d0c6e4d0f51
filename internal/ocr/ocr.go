// Package ocr holds the text recognition backends. A backend takes the raw
// bytes of one image and returns its text; any provider that can do that is
// interchangeable.
package ocr

import (
	"context"
	"errors"
)

// ErrNoText is returned when the provider processed the image but produced no text.
var ErrNoText = errors.New("no text recognized")

// Recognizer converts one image into unstructured text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, fileName, language string) (string, error)
}
