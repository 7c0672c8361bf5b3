package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures the API router.
type RouterOptions struct {
	AuthEnabled bool
	AuthToken   string
	SSEHandler  http.Handler
}

// NewRouter builds the HTTP router for the catalog API.
func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthEnabled, opts.AuthToken))

		r.Get("/catalog", h.GetCatalog)
		r.Post("/catalog", h.NewCatalog)
		r.Post("/catalog/open", h.OpenCatalog)
		r.Delete("/catalog", h.CloseCatalog)

		r.Get("/items", h.ListItems)
		r.Get("/recent", h.RecentFiles)

		r.Route("/memos", func(r chi.Router) {
			r.Post("/", h.CreateMemo)
			r.Get("/{id}", h.GetMemo)
			r.Put("/{id}", h.UpdateMemo)
			r.Delete("/{id}", h.DeleteMemo)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Post("/", h.CreateFolder)
			r.Get("/{id}", h.GetFolder)
			r.Put("/{id}", h.RenameFolder)
			r.Delete("/{id}", h.DeleteFolder)
		})

		if opts.SSEHandler != nil {
			r.Get("/events", opts.SSEHandler.ServeHTTP)
		}
	})

	return r
}
