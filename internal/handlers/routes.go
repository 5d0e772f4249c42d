package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the HTTP router.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Server-Token", "X-Admin-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/leaderboard/{counter}", h.GetLeaderboard)
		r.Get("/leaderboard/{counter}/history", h.GetLeaderboardHistory)
		r.Get("/players/{name}/stats", h.GetPlayerStats)

		r.Group(func(r chi.Router) {
			r.Use(h.ServerAuthMiddleware)
			r.Post("/ingest/events", h.IngestEvents)
			r.Get("/outbox", h.PollOutbox)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminAuthMiddleware)
			r.Get("/ratios", h.ListRatios)
			r.Post("/ratios", h.CreateRatio)
			r.Get("/ratios/{id}", h.GetRatio)
			r.Put("/ratios/{id}", h.UpdateRatio)
			r.Delete("/ratios/{id}", h.DeleteRatio)

			for name, hs := range h.ConfigRoutes() {
				r.Get("/"+name, hs[0])
				r.Put("/"+name, hs[1])
			}
		})
	})
	return r
}
