package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultSpaceEndpoint = "https://api.ocr.space/parse/image"
	// DefaultSpaceAPIKey is the public OCR.space test key (a few requests per day).
	DefaultSpaceAPIKey = "helloworld"
)

// Space talks to the OCR.space parse API.
type Space struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewSpace returns an OCR.space client. An empty endpoint or key falls back
// to the public defaults; timeout bounds every request.
func NewSpace(endpoint, apiKey string, timeout time.Duration) *Space {
	if endpoint == "" {
		endpoint = DefaultSpaceEndpoint
	}
	if apiKey == "" {
		apiKey = DefaultSpaceAPIKey
	}
	return &Space{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type spaceResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

func (s *Space) Recognize(ctx context.Context, image []byte, fileName, language string) (string, error) {
	body, contentType, err := s.encode(image, fileName, language)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, snippet(raw))
	}

	var result spaceResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if result.IsErroredOnProcessing {
		return "", fmt.Errorf("%w: %s", ErrNoText, errorMessage(result.ErrorMessage))
	}
	if len(result.ParsedResults) == 0 {
		return "", fmt.Errorf("%w: empty ParsedResults", ErrNoText)
	}
	return result.ParsedResults[0].ParsedText, nil
}

func (s *Space) encode(image []byte, fileName, language string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{"apikey": s.apiKey, "language": language}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."); ext != "" {
		fields["filetype"] = ext
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// errorMessage flattens ErrorMessage, which the API sends as a string or a list.
func errorMessage(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return one
	}
	return "processing failed"
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
