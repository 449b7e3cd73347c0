package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes builds the HTTP router for h.
func RegisterRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		RecoveryMiddleware(h.log),
		LoggingMiddleware(h.log),
	)

	// Preference store
	r.Get("/prefs/{key}", h.GetPref)
	r.Put("/prefs/{key}", h.SetPref)
	r.Delete("/prefs/{key}", h.DeletePref)

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Get("/prefs", h.ListPrefs)
		r.Post("/expiry/check", h.CheckExpiry)
		r.Post("/sweep", h.RunSweep)
		r.Get("/ad-configuration", h.GetAdConfiguration)
		r.Get("/consent-status", h.GetConsentStatus)
		r.Get("/logs", h.GetLogs)
	})

	// Observability
	r.Get("/metrics", h.GetMetrics)
	r.Get("/metrics/snapshot", h.GetMetricsSnapshot)
	r.Get("/health", h.GetHealth)

	return r
}
