package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardreader/internal/archive"
	"cardreader/internal/extract"
	"cardreader/internal/logger"
	"cardreader/internal/models"
	"cardreader/internal/ocr"
)

// fakeOCR answers by file name and records the call order.
type fakeOCR struct {
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeOCR) Recognize(_ context.Context, image []byte, fileName, language string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%s:%s", fileName, language, image))
	if err := f.errs[fileName]; err != nil {
		return "", err
	}
	return f.texts[fileName], nil
}

func expand(t *testing.T, names ...string) []archive.Entry {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte("img"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	r := bytes.NewReader(buf.Bytes())
	entries, err := archive.Expand(r, r.Size(), t.TempDir())
	require.NoError(t, err)
	return entries
}

func newProcessor(rec ocr.Recognizer) *Processor {
	return &Processor{
		Recognizer: rec,
		Extractor:  extract.Regex{},
		Language:   "eng",
		Logger:     logger.Nop(),
	}
}

func TestProcessEndToEnd(t *testing.T) {
	entries := expand(t, "jane.jpg")
	fake := &fakeOCR{texts: map[string]string{
		"jane.jpg": "Jane Doe\nSenior Engineer\n12 Elm St\nSpringfield\nIL 62701\njane@example.com +1 555-123-4567 Emirates flight info",
	}}

	b := newProcessor(fake).Process(context.Background(), entries)

	require.Len(t, b.Records, 1)
	assert.Equal(t, models.CardRecord{
		Name:           "Jane Doe",
		Designation:    "Senior Engineer",
		Address:        "12 Elm St, Springfield, IL 62701",
		Email:          "jane@example.com",
		Mobile:         "+1 555-123-4567",
		Airline:        "Emirates",
		SourceFileName: "jane.jpg",
	}, b.Records[0])
	assert.Empty(t, b.Unrecognized)
	assert.NotEmpty(t, b.ID)
	assert.False(t, b.Empty())
}

func TestProcessSkipsFailures(t *testing.T) {
	entries := expand(t, "a.jpg", "notes.txt", "b.png", "c.jpeg", "d.JPG")
	fake := &fakeOCR{
		texts: map[string]string{
			"a.jpg":  "Alice\nCaptain",
			"c.jpeg": "  \n\t ",
			"d.JPG":  "Dan\nPurser",
		},
		errs: map[string]error{
			"b.png": errors.New("connection reset"),
		},
	}

	b := newProcessor(fake).Process(context.Background(), entries)

	// Non-images are never sent to OCR and calls happen in archive order.
	assert.Equal(t, []string{"a.jpg:eng:img", "b.png:eng:img", "c.jpeg:eng:img", "d.JPG:eng:img"}, fake.calls)

	require.Len(t, b.Records, 2)
	assert.Equal(t, "Alice", b.Records[0].Name)
	assert.Equal(t, "a.jpg", b.Records[0].SourceFileName)
	assert.Equal(t, "Dan", b.Records[1].Name)
	assert.Equal(t, []string{"b.png", "c.jpeg"}, b.Unrecognized)

	require.Len(t, b.Statuses, 4)
	assert.Equal(t, models.StateExtracted, b.Statuses[0].State)
	assert.Equal(t, models.StateSkipped, b.Statuses[1].State)
	assert.Equal(t, "Text recognition failed for this image.", b.Statuses[1].Message)
	assert.Equal(t, "No text could be recognized in this image.", b.Statuses[2].Message)
}

func TestProcessNothingExtracted(t *testing.T) {
	entries := expand(t, "a.jpg", "b.jpg")
	fake := &fakeOCR{errs: map[string]error{
		"a.jpg": ocr.ErrNoText,
		"b.jpg": ocr.ErrNoText,
	}}

	b := newProcessor(fake).Process(context.Background(), entries)
	assert.True(t, b.Empty())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, b.Unrecognized)
	assert.NotNil(t, b.Records)
}

func TestProcessReportsDuplicates(t *testing.T) {
	entries := expand(t, "1.jpg", "2.jpg", "3.jpg")
	fake := &fakeOCR{texts: map[string]string{
		"1.jpg": "Jonathan Smith\nManager",
		"2.jpg": "Jonathon Smith\nManager",
		"3.jpg": "Priya Nair\nAnalyst",
	}}

	b := newProcessor(fake).Process(context.Background(), entries)
	require.Len(t, b.Duplicates, 1)
	assert.Equal(t, 0, b.Duplicates[0].First)
	assert.Equal(t, 1, b.Duplicates[0].Second)
}
