// internal/app/features/invoices/routes.go
package invoices

import (
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// InvoiceRoutes mounts the single-invoice routes under /invoice.
func InvoiceRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/{id}", h.ServeInvoice)
		pr.Get("/{id}/pdf", h.ServeInvoicePDF)
	})

	// Correcting or voiding a recorded sale is an admin call.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}

// HistoryRoutes mounts the bill list under /history.
func HistoryRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeHistory)
	})

	return r
}
