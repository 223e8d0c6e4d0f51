// Package config loads the service settings from the environment, after
// reading an optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"cardreader/internal/logger"
	"cardreader/internal/ocr"
)

// OCR providers.
const (
	ProviderOCRSpace  = "ocrspace"
	ProviderVision    = "vision"
	ProviderTesseract = "tesseract"
)

// Field extractors.
const (
	ExtractorRegex  = "regex"
	ExtractorGemini = "gemini"
)

type Config struct {
	ListenAddr  string        `validate:"required"`
	UploadDir   string        `validate:"required"`
	MaxUploadMB int64         `validate:"min=1,max=1024"`
	CORSOrigins []string      `validate:"min=1"`
	BatchTTL    time.Duration `validate:"min=1m"`

	OCRProvider     string        `validate:"oneof=ocrspace vision tesseract"`
	OCRAPIKey       string        `validate:"required_if=OCRProvider ocrspace"`
	OCREndpoint     string        `validate:"omitempty,url"`
	OCRLanguage     string        `validate:"required"`
	OCRTimeout      time.Duration `validate:"min=1s"`
	VisionCredsFile string

	Extractor    string `validate:"oneof=regex gemini"`
	GeminiAPIKey string `validate:"required_if=Extractor gemini"`
	GeminiModel  string

	RedisURL string `validate:"omitempty,url"`

	DownloadTokenSecret string        `validate:"required,min=16"`
	DownloadTokenTTL    time.Duration `validate:"min=1m"`

	Log logger.Settings
}

// Load reads envFile (ignored when missing) and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{getenv: getenv}

	cfg := &Config{
		ListenAddr:  e.str("LISTEN_ADDR", ":8080"),
		UploadDir:   e.str("UPLOAD_DIR", "./cards"),
		MaxUploadMB: e.integer("MAX_UPLOAD_MB", 50),
		CORSOrigins: e.list("CORS_ORIGINS", []string{"*"}),
		BatchTTL:    e.duration("BATCH_TTL", time.Hour),

		OCRProvider:     e.str("OCR_PROVIDER", ProviderOCRSpace),
		OCRAPIKey:       e.str("OCR_API_KEY", ocr.DefaultSpaceAPIKey),
		OCREndpoint:     e.str("OCR_ENDPOINT", ocr.DefaultSpaceEndpoint),
		OCRLanguage:     e.str("OCR_LANGUAGE", "eng"),
		OCRTimeout:      e.duration("OCR_TIMEOUT", 30*time.Second),
		VisionCredsFile: e.str("GOOGLE_APPLICATION_CREDENTIALS", ""),

		Extractor:    e.str("EXTRACTOR", ExtractorRegex),
		GeminiAPIKey: e.str("GEMINI_API_KEY", ""),
		GeminiModel:  e.str("GEMINI_MODEL", ""),

		RedisURL: e.str("REDIS_URL", ""),

		DownloadTokenSecret: e.str("DOWNLOAD_TOKEN_SECRET", ""),
		DownloadTokenTTL:    e.duration("DOWNLOAD_TOKEN_TTL", time.Hour),

		Log: logger.Settings{
			Level:      e.str("LOG_LEVEL", logger.LevelInfo),
			Type:       e.str("LOG_TYPE", logger.TypeConsole),
			FilePath:   e.str("LOG_FILE", ""),
			MaxSize:    int(e.integer("LOG_MAX_SIZE", 10)),
			MaxBackups: int(e.integer("LOG_MAX_BACKUPS", 3)),
			MaxAge:     int(e.integer("LOG_MAX_AGE", 28)),
		},
	}
	if e.err != nil {
		return nil, e.err
	}

	if cfg.DownloadTokenSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.DownloadTokenSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed for Config: %w", err)
	}
	switch c.Log.Type {
	case logger.TypeConsole:
	case logger.TypeFile:
		if c.Log.FilePath == "" {
			return fmt.Errorf("LOG_FILE is required for the file logger")
		}
	default:
		return fmt.Errorf("unsupported LOG_TYPE %q", c.Log.Type)
	}
	return nil
}

// MaxUploadBytes is the request body limit for an archive upload.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate download token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// env collects the first parse error so FromEnv can read everything in one pass.
type env struct {
	getenv func(string) string
	err    error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int64) int64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}

func (e *env) list(key string, def []string) []string {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
