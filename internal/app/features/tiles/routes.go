// internal/app/features/tiles/routes.go
package tiles

import (
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts tile management under /tiles. Stock is admin-maintained;
// staff only see it through the dashboard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))

		pr.Get("/new", h.ServeNew)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
