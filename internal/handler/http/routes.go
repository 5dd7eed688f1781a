package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version", h.getServerVersion)
	})

	// device-facing surface
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/sync/status", h.getSyncStatus)
		r.Post("/api/sync/incremental", h.incrementalSync)
		r.Post("/api/sync/full", h.fullSync)
		r.Get("/api/sync/changes", h.getLocalChanges)
		r.Post("/api/changes", h.recordChanges)
	})

	// remote surface: what peer devices sync against
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/remote/changes", h.getRemoteChanges)
		r.Post("/api/remote/changes", h.pushRemoteChanges)
		r.Get("/api/remote/snapshot", h.getRemoteSnapshot)
		r.Post("/api/remote/snapshot", h.replaceRemoteSnapshot)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
