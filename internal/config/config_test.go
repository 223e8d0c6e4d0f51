package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(mapEnv(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "./cards", cfg.UploadDir)
	assert.Equal(t, ProviderOCRSpace, cfg.OCRProvider)
	assert.Equal(t, "helloworld", cfg.OCRAPIKey)
	assert.Equal(t, "https://api.ocr.space/parse/image", cfg.OCREndpoint)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, 30*time.Second, cfg.OCRTimeout)
	assert.Equal(t, ExtractorRegex, cfg.Extractor)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Len(t, cfg.DownloadTokenSecret, 64)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(mapEnv(map[string]string{
		"LISTEN_ADDR":           "127.0.0.1:9000",
		"UPLOAD_DIR":            "/tmp/cards",
		"OCR_API_KEY":           "K123",
		"OCR_TIMEOUT":           "5s",
		"CORS_ORIGINS":          "https://a.example, https://b.example",
		"REDIS_URL":             "redis://localhost:6379/0",
		"DOWNLOAD_TOKEN_SECRET": "0123456789abcdef0123",
		"MAX_UPLOAD_MB":         "5",
		"LOG_LEVEL":             "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "/tmp/cards", cfg.UploadDir)
	assert.Equal(t, "K123", cfg.OCRAPIKey)
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "0123456789abcdef0123", cfg.DownloadTokenSecret)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestFromEnvInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown provider":      {"OCR_PROVIDER": "abbyy"},
		"bad timeout":           {"OCR_TIMEOUT": "soon"},
		"bad upload size":       {"MAX_UPLOAD_MB": "lots"},
		"zero upload size":      {"MAX_UPLOAD_MB": "0"},
		"gemini without key":    {"EXTRACTOR": "gemini"},
		"short token secret":    {"DOWNLOAD_TOKEN_SECRET": "short"},
		"file log without path": {"LOG_TYPE": "file"},
		"unknown log type":      {"LOG_TYPE": "syslog"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(mapEnv(vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OCR_LANGUAGE=ger\n"), 0o600))
	t.Setenv("OCR_LANGUAGE", "")
	os.Unsetenv("OCR_LANGUAGE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ger", cfg.OCRLanguage)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
