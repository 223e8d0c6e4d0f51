package ocr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceRecognize(t *testing.T) {
	t.Run("returns parsed text and sends the form", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "secret", r.FormValue("apikey"))
			assert.Equal(t, "eng", r.FormValue("language"))
			assert.Equal(t, "png", r.FormValue("filetype"))

			f, h, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "card.png", h.Filename)
			data, _ := io.ReadAll(f)
			assert.Equal(t, "image-bytes", string(data))

			io.WriteString(w, `{"ParsedResults":[{"ParsedText":"Jane Doe\r\nPilot\r\n","FileParseExitCode":1}],"IsErroredOnProcessing":false,"ErrorMessage":null}`)
		}))
		defer srv.Close()

		s := NewSpace(srv.URL, "secret", 5*time.Second)
		got, err := s.Recognize(context.Background(), []byte("image-bytes"), "cards/card.png", "eng")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe\r\nPilot\r\n", got)
	})

	t.Run("service reported failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"IsErroredOnProcessing":true,"ErrorMessage":["Unable to recognize the file type"]}`)
		}))
		defer srv.Close()

		_, err := NewSpace(srv.URL, "", time.Second).Recognize(context.Background(), []byte("x"), "a.jpg", "eng")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoText))
		assert.Contains(t, err.Error(), "Unable to recognize the file type")
	})

	t.Run("no parsed results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"IsErroredOnProcessing":false,"ParsedResults":[]}`)
		}))
		defer srv.Close()

		_, err := NewSpace(srv.URL, "", time.Second).Recognize(context.Background(), []byte("x"), "a.jpg", "eng")
		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "The API key is invalid", http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewSpace(srv.URL, "", time.Second).Recognize(context.Background(), []byte("x"), "a.jpg", "eng")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := NewSpace(srv.URL, "", time.Second).Recognize(context.Background(), []byte("x"), "a.jpg", "eng")
		assert.Error(t, err)
	})
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "a; b", errorMessage([]byte(`["a","b"]`)))
	assert.Equal(t, "single", errorMessage([]byte(`"single"`)))
	assert.Equal(t, "processing failed", errorMessage([]byte(`null`)))
	assert.Equal(t, "processing failed", errorMessage(nil))
}
