package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(metricsMiddleware(s.Metrics))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	r.Handle("/static/*", staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)

		r.Get("/", s.handleHome)
		r.Route("/word-of-the-day", func(r chi.Router) {
			r.Get("/", s.handleWordOfTheDay)
			r.Post("/submit", s.handleSubmit)
			r.Post("/retry", s.handleRetry)
			r.Post("/close", s.handleCloseResult)
			r.Get("/timer", s.handleTimer)
		})
		r.Get("/dashboard", s.handleDashboard)
	})
	return r
}
