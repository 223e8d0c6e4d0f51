// Command cardreader serves the business card reader: upload a ZIP of card
// images, review the extracted fields and download them as a spreadsheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardreader/internal/batch"
	"cardreader/internal/config"
	"cardreader/internal/extract"
	googlevision "cardreader/internal/google-vision"
	"cardreader/internal/handlers"
	"cardreader/internal/logger"
	"cardreader/internal/ocr"
	"cardreader/internal/router"
	"cardreader/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	recognizer, err := newRecognizer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR provider: %w", err)
	}
	if c, ok := recognizer.(io.Closer); ok {
		closers = append(closers, c)
	}

	extractor, err := newExtractor(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}
	if c, ok := extractor.(io.Closer); ok {
		closers = append(closers, c)
	}

	batches, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize batch store: %w", err)
	}
	if c, ok := batches.(io.Closer); ok {
		closers = append(closers, c)
	}

	h := &handlers.Handler{
		Processor: &batch.Processor{
			Recognizer: recognizer,
			Extractor:  extractor,
			Language:   cfg.OCRLanguage,
			Logger:     log,
		},
		Store:          batches,
		Tokens:         handlers.NewDownloadTokens(cfg.DownloadTokenSecret, cfg.DownloadTokenTTL),
		Logger:         log,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.RegisterRouter(h, log, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.ListenAddr, "ocr_provider", cfg.OCRProvider, "extractor", cfg.Extractor)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func newRecognizer(ctx context.Context, cfg *config.Config) (ocr.Recognizer, error) {
	switch cfg.OCRProvider {
	case config.ProviderVision:
		return googlevision.New(ctx, cfg.VisionCredsFile)
	case config.ProviderTesseract:
		return ocr.NewTesseract()
	default:
		return ocr.NewSpace(cfg.OCREndpoint, cfg.OCRAPIKey, cfg.OCRTimeout), nil
	}
}

func newExtractor(ctx context.Context, cfg *config.Config, log logger.Logger) (extract.Extractor, error) {
	if cfg.Extractor == config.ExtractorGemini {
		return extract.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	}
	return extract.Regex{}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.RedisURL == "" {
		return store.NewMemory(cfg.BatchTTL), nil
	}
	return store.NewRedis(ctx, cfg.RedisURL, cfg.BatchTTL)
}
