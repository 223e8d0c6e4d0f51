// Package googlevision recognizes card text with the Google Cloud Vision API.
package googlevision

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"cardreader/internal/ocr"
)

// OCR.space style three-letter codes mapped to the BCP-47 hints Vision expects.
var languageHints = map[string]string{
	"eng": "en",
	"ger": "de",
	"fre": "fr",
	"spa": "es",
	"ita": "it",
	"por": "pt",
	"ara": "ar",
	"hin": "hi",
	"jpn": "ja",
	"kor": "ko",
	"chs": "zh",
}

type detectFunc func(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext) ([]*visionpb.EntityAnnotation, error)

// Recognizer wraps an ImageAnnotatorClient.
type Recognizer struct {
	client *vision.ImageAnnotatorClient
	detect detectFunc
}

// New creates the Vision client. With an empty credPath the default
// application credentials are used.
func New(ctx context.Context, credPath string) (*Recognizer, error) {
	var (
		client *vision.ImageAnnotatorClient
		err    error
	)
	if credPath != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credPath))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init OCR client: %w", err)
	}
	return &Recognizer{
		client: client,
		detect: func(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext) ([]*visionpb.EntityAnnotation, error) {
			return client.DetectTexts(ctx, img, ictx, 1)
		},
	}, nil
}

func (r *Recognizer) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Recognize returns the full-text annotation, which Vision puts first.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, _ string, language string) (string, error) {
	img := &visionpb.Image{Content: image}

	var ictx *visionpb.ImageContext
	if hint := hintFor(language); hint != "" {
		ictx = &visionpb.ImageContext{LanguageHints: []string{hint}}
	}

	anns, err := r.detect(ctx, img, ictx)
	if err != nil {
		return "", fmt.Errorf("vision text detection failed: %w", err)
	}
	if len(anns) == 0 || anns[0].Description == "" {
		return "", ocr.ErrNoText
	}
	return anns[0].Description, nil
}

func hintFor(language string) string {
	if h, ok := languageHints[language]; ok {
		return h
	}
	if len(language) == 2 {
		return language
	}
	return ""
}
