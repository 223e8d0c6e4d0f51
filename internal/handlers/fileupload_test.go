package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, fields ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		w, err := mw.CreateFormFile(f, f+".zip")
		require.NoError(t, err)
		_, err = w.Write([]byte(f))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req
}

func TestArchiveFile(t *testing.T) {
	cases := []struct {
		name   string
		fields []string
		want   string
	}{
		{"preferred field", []string{"other", "cards"}, "cards.zip"},
		{"alternative field", []string{"zzz", "ZIP"}, "ZIP.zip"},
		{"first field fallback", []string{"beta", "alpha"}, "alpha.zip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, h, err := archiveFile(multipartRequest(t, tc.fields...))
			require.NoError(t, err)
			assert.Equal(t, tc.want, h.Filename)
		})
	}

	t.Run("no file", func(t *testing.T) {
		_, _, err := archiveFile(multipartRequest(t))
		assert.Error(t, err)
	})
}
