// internal/app/features/invoices/handler.go
package invoices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	billstore "github.com/dalemusser/tilestock/internal/app/store/bills"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/app/system/flash"
	"github.com/dalemusser/tilestock/internal/app/system/htmlsanitize"
	"github.com/dalemusser/tilestock/internal/app/system/pdfgen"
	"github.com/dalemusser/tilestock/internal/app/system/timeouts"
	"github.com/dalemusser/tilestock/internal/app/system/viewdata"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Bills      *billstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(bills *billstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Bills:      bills,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type historyData struct {
	viewdata.BaseVM
	Bills []models.Bill
}

type invoiceData struct {
	viewdata.BaseVM
	Bill        models.Bill
	WhatsAppURL string
}

type editData struct {
	viewdata.BaseVM
	Error string
	Bill  models.Bill
}

// ServeHistory handles GET /history: every bill, newest first.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	bills, err := h.Bills.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list bills failed", err, "Could not load billing history.", "/dashboard")
		return
	}

	vm := viewdata.NewBaseVM(r, "Billing History", "/dashboard")
	vm.Flashes = flash.Pop(h.SessionMgr, w, r)

	templates.Render(w, r, "history", historyData{
		BaseVM: vm,
		Bills:  bills,
	})
}

// ServeInvoice handles GET /invoice/{id}.
func (h *Handler) ServeInvoice(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.loadBill(w, r)
	if !ok {
		return
	}

	vm := viewdata.NewBaseVM(r, "Invoice", "/history")
	vm.Flashes = flash.Pop(h.SessionMgr, w, r)

	templates.Render(w, r, "invoice", invoiceData{
		BaseVM:      vm,
		Bill:        *bill,
		WhatsAppURL: whatsAppURL(bill),
	})
}

// ServeInvoicePDF handles GET /invoice/{id}/pdf and streams the invoice
// as a PDF download.
func (h *Handler) ServeInvoicePDF(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.loadBill(w, r)
	if !ok {
		return
	}

	pdf, err := pdfgen.InvoicePDF(bill)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "render invoice pdf failed", err, "Could not generate the PDF.", "/invoice/"+bill.ID.Hex())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice_`+bill.ID.Hex()+`.pdf"`)
	_, _ = w.Write(pdf)
}

// ServeEdit handles GET /invoice/{id}/edit (admin only).
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.loadBill(w, r)
	if !ok {
		return
	}

	templates.Render(w, r, "invoice_edit", editData{
		BaseVM: viewdata.NewBaseVM(r, "Edit Bill", "/invoice/"+bill.ID.Hex()),
		Bill:   *bill,
	})
}

// HandleEdit handles POST /invoice/{id}/edit. Item prices and names are
// fixed at sale time; only quantities, customer details and adjustments
// can change. Stock is not touched here.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.loadBill(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse bill edit form failed", err, "Invalid form data.", "/history")
		return
	}

	bill.CustomerName = htmlsanitize.Text(r.FormValue("customer_name"))
	bill.CustomerMobile = htmlsanitize.Text(r.FormValue("customer_mobile"))
	bill.GST = parseFloatOr(r.FormValue("gst"), bill.GST)
	bill.Discount = parseFloatOr(r.FormValue("discount"), bill.Discount)

	var kept []models.BillItem
	for i, item := range bill.Items {
		raw := strings.TrimSpace(r.FormValue("item_qty_" + strconv.Itoa(i)))
		if raw == "" {
			kept = append(kept, item)
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			h.renderEditWithError(w, r, "Quantities must be whole numbers.", *bill)
			return
		}
		if qty == 0 {
			continue
		}
		item.Quantity = qty
		kept = append(kept, item)
	}
	bill.Items = kept

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Bills.Update(ctx, bill.ID, *bill); err != nil {
		h.renderEditWithError(w, r, err.Error(), *bill)
		return
	}

	h.Log.Info("bill updated", zap.String("bill_id", bill.ID.Hex()))
	flash.Add(h.SessionMgr, w, r, "Bill updated.")
	http.Redirect(w, r, "/invoice/"+bill.ID.Hex(), http.StatusSeeOther)
}

// HandleDelete handles POST /invoice/{id}/delete (admin only).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad bill id", err, "Invalid bill.", "/history")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Bills.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete bill failed", err, "Could not delete the bill.", "/history")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "bill not found for delete", nil, "That bill does not exist.", "/history")
		return
	}

	h.Log.Info("bill deleted", zap.String("bill_id", id.Hex()))
	flash.Add(h.SessionMgr, w, r, "Bill deleted.")
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

func (h *Handler) loadBill(w http.ResponseWriter, r *http.Request) (*models.Bill, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad bill id", err, "Invalid bill.", "/history")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	bill, err := h.Bills.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.LogNotFound(w, r, "bill not found", err, "That bill does not exist.", "/history")
			return nil, false
		}
		h.ErrLog.LogServerError(w, r, "load bill failed", err, "Could not load the bill.", "/history")
		return nil, false
	}
	return bill, true
}

// whatsAppURL builds a wa.me share link with the invoice summary, matching
// the message the shop sends customers by hand.
func whatsAppURL(bill *models.Bill) string {
	var b strings.Builder
	b.WriteString("From: Sita Ram Traders\n")
	if bill.CustomerName != "" {
		b.WriteString("Customer: " + bill.CustomerName + "\n")
	}
	b.WriteString("Invoice: " + bill.ID.Hex() + "\n")
	for _, item := range bill.Items {
		fmt.Fprintf(&b, "%s %s x%d = %.2f\n", item.TileName, item.Size, item.Quantity, item.Total)
	}
	fmt.Fprintf(&b, "Total: %.2f", bill.Total)

	mobile := strings.TrimSpace(bill.CustomerMobile)
	return "https://wa.me/" + mobile + "?text=" + url.QueryEscape(b.String())
}

func parseFloatOr(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

func (h *Handler) renderEditWithError(w http.ResponseWriter, r *http.Request, msg string, bill models.Bill) {
	templates.Render(w, r, "invoice_edit", editData{
		BaseVM: viewdata.NewBaseVM(r, "Edit Bill", "/invoice/"+bill.ID.Hex()),
		Error:  msg,
		Bill:   bill,
	})
}
