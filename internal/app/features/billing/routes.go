// internal/app/features/billing/routes.go
package billing

import (
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeBilling)
		pr.Post("/", h.HandleCreateBill)
	})

	return r
}
