// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	billstore "github.com/dalemusser/tilestock/internal/app/store/bills"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/app/system/pdfgen"
	"github.com/dalemusser/tilestock/internal/app/system/timeouts"
	"github.com/dalemusser/tilestock/internal/app/system/viewdata"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Tiles  *tilestore.Store
	Bills  *billstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(tiles *tilestore.Store, bills *billstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tiles:  tiles,
		Bills:  bills,
		Log:    logger,
		ErrLog: errLog,
	}
}

type salesReportData struct {
	viewdata.BaseVM
	Bills      []models.Bill
	TotalSales float64
	Today      time.Time
}

// ServeSalesReport handles GET /sales_report: today's bills and their sum.
func (h *Handler) ServeSalesReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	now := time.Now()

	bills, err := h.Bills.ListByDay(ctx, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list today's bills failed", err, "Could not load the sales report.", "/dashboard")
		return
	}

	total, err := h.Bills.TotalForDay(ctx, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sum today's sales failed", err, "Could not load the sales report.", "/dashboard")
		return
	}

	templates.Render(w, r, "sales_report", salesReportData{
		BaseVM:     viewdata.NewBaseVM(r, "Today's Sales", "/dashboard"),
		Bills:      bills,
		TotalSales: total,
		Today:      now,
	})
}

// ServeStockPDF handles GET /stock_availability_pdf (admin only) and streams
// the current stock list as a dated PDF download.
func (h *Handler) ServeStockPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tiles, err := h.Tiles.List(ctx, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tiles for stock pdf failed", err, "Could not generate the PDF.", "/dashboard")
		return
	}

	now := time.Now()
	pdf, err := pdfgen.StockPDF(tiles, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "render stock pdf failed", err, "Could not generate the PDF.", "/dashboard")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="stock_availability_`+now.Format("2006-01-02")+`.pdf"`)
	_, _ = w.Write(pdf)
}
