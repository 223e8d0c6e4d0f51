package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"cardreader/internal/handlers"
	"cardreader/internal/logger"
	"cardreader/internal/middleware"
)

func RegisterRouter(h *handlers.Handler, log logger.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(corsOrigins))
	r.Use(middleware.LoggingMiddleware(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	// Browser surface
	r.Get("/", h.Index)
	r.Post("/upload", h.Upload)

	r.Route("/api/v1/batches", func(r chi.Router) {
		r.Post("/", h.CreateBatch)
		r.Get("/{id}", h.GetBatch)
		// Downloads need the token issued with the batch.
		r.Get("/{id}/export.xlsx", h.ExportXLSX)
		r.Get("/{id}/export.csv", h.ExportCSV)
		r.Get("/{id}/cards/{index}/qrcode", h.GetCardQRCode)
	})
	return r
}
