package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the API routes.
func NewRouter(cfg ServerConfig) *chi.Mux {
	logger := cfg.logger()
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Token, logger))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", snapshotHandler(cfg))
			r.Delete("/", resetHandler(cfg))
			r.Put("/video", loadVideoHandler(cfg))
			r.Delete("/video", clearVideoHandler(cfg))
			r.Patch("/transport", transportHandler(cfg))
			r.Patch("/export-settings", exportSettingsHandler(cfg))
			r.Put("/selection", selectHandler(cfg))
		})

		r.Route("/redactions", func(r chi.Router) {
			r.Get("/", listRedactionsHandler(cfg))
			r.Post("/", addRedactionHandler(cfg))
			r.Put("/order", reorderHandler(cfg))
			r.Patch("/{id}", updateRedactionHandler(cfg))
			r.Delete("/{id}", removeRedactionHandler(cfg))
			r.Post("/{id}/toggle", toggleRedactionHandler(cfg))
		})

		r.Route("/annotations", func(r chi.Router) {
			r.Get("/", listAnnotationsHandler(cfg))
			r.Post("/", addAnnotationHandler(cfg))
			r.Patch("/{id}", updateAnnotationHandler(cfg))
			r.Delete("/{id}", removeAnnotationHandler(cfg))
		})

		r.Route("/draft", func(r chi.Router) {
			r.Post("/", createDraftHandler(cfg))
			r.Patch("/", updateDraftHandler(cfg))
			r.Delete("/", clearDraftHandler(cfg))
			r.Post("/commit", commitDraftHandler(cfg))
		})

		r.Get("/lanes", lanesHandler(cfg))
		r.Get("/graph", graphHandler(cfg))

		r.Route("/exports", func(r chi.Router) {
			r.Post("/", startExportHandler(cfg))
			r.Get("/status", exportStatusHandler(cfg))
			r.Get("/output", exportOutputHandler(cfg))
			r.Get("/history", historyHandler(cfg))
			r.Get("/history/{id}", historyEntryHandler(cfg))
		})

		r.Get("/doctor", doctorHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}
