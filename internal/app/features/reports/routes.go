// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// SalesReportRoutes mounts the daily sales report at /sales_report.
func SalesReportRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeSalesReport)
	})

	return r
}

// StockPDFRoutes mounts the stock availability download at
// /stock_availability_pdf (admin only).
func StockPDFRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))
		pr.Get("/", h.ServeStockPDF)
	})

	return r
}
