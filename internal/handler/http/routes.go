package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init wires the full route tree. Every replication endpoint requires an
// authenticated owner; the version endpoint does not.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Group(func(r chi.Router) {
		r.Get("/api/version/", h.version)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/{collection}/pull", h.pull)
		r.Post("/api/{collection}/push", h.push)
	})

	return router
}
