package googlevision

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardreader/internal/ocr"
)

func TestHintFor(t *testing.T) {
	assert.Equal(t, "en", hintFor("eng"))
	assert.Equal(t, "de", hintFor("ger"))
	assert.Equal(t, "fr", hintFor("fr"))
	assert.Equal(t, "", hintFor(""))
	assert.Equal(t, "", hintFor("klingon"))
}

func TestRecognize(t *testing.T) {
	var gotImage *visionpb.Image
	var gotCtx *visionpb.ImageContext
	r := &Recognizer{detect: func(_ context.Context, img *visionpb.Image, ictx *visionpb.ImageContext) ([]*visionpb.EntityAnnotation, error) {
		gotImage, gotCtx = img, ictx
		return []*visionpb.EntityAnnotation{
			{Description: "Jane Doe\nSenior Engineer"},
			{Description: "Jane"},
		}, nil
	}}

	text, err := r.Recognize(context.Background(), []byte("png bytes"), "jane.png", "eng")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Engineer", text)
	assert.Equal(t, []byte("png bytes"), gotImage.GetContent())
	require.NotNil(t, gotCtx)
	assert.Equal(t, []string{"en"}, gotCtx.GetLanguageHints())

	_, err = r.Recognize(context.Background(), nil, "x.png", "klingon")
	require.NoError(t, err)
	assert.Nil(t, gotCtx)
}

func TestRecognizeNoText(t *testing.T) {
	for name, anns := range map[string][]*visionpb.EntityAnnotation{
		"no annotations":    nil,
		"empty description": {{Description: ""}},
	} {
		t.Run(name, func(t *testing.T) {
			r := &Recognizer{detect: func(context.Context, *visionpb.Image, *visionpb.ImageContext) ([]*visionpb.EntityAnnotation, error) {
				return anns, nil
			}}
			_, err := r.Recognize(context.Background(), nil, "blank.jpg", "eng")
			assert.ErrorIs(t, err, ocr.ErrNoText)
		})
	}
}

func TestRecognizeError(t *testing.T) {
	boom := errors.New("permission denied")
	r := &Recognizer{detect: func(context.Context, *visionpb.Image, *visionpb.ImageContext) ([]*visionpb.EntityAnnotation, error) {
		return nil, boom
	}}
	_, err := r.Recognize(context.Background(), nil, "card.jpg", "eng")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ocr.ErrNoText)
	assert.NoError(t, r.Close())
}
