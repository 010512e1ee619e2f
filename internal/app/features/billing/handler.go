// internal/app/features/billing/handler.go
package billing

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	billstore "github.com/dalemusser/tilestock/internal/app/store/bills"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/app/system/flash"
	"github.com/dalemusser/tilestock/internal/app/system/htmlsanitize"
	"github.com/dalemusser/tilestock/internal/app/system/timeouts"
	"github.com/dalemusser/tilestock/internal/app/system/viewdata"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Tiles      *tilestore.Store
	Bills      *billstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(tiles *tilestore.Store, bills *billstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tiles:      tiles,
		Bills:      bills,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type billingFormData struct {
	viewdata.BaseVM
	Error string
	Tiles []models.Tile
}

// ServeBilling handles GET /billing: the sale form listing every tile with
// a quantity input.
func (h *Handler) ServeBilling(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tiles, err := h.Tiles.List(ctx, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tiles failed", err, "Could not load the stock list.", "/dashboard")
		return
	}

	vm := viewdata.NewBaseVM(r, "Billing", "/dashboard")
	vm.Flashes = flash.Pop(h.SessionMgr, w, r)

	templates.Render(w, r, "billing", billingFormData{
		BaseVM: vm,
		Tiles:  tiles,
	})
}

// saleLine is one requested tile + quantity parsed from the form.
type saleLine struct {
	tileID primitive.ObjectID
	qty    int
}

// HandleCreateBill handles POST /billing. Quantities arrive as qty_<tile id>
// form fields; zero and blank are skipped. Stock is decremented with a
// lower-bound guard per tile, and already-applied decrements are restored if
// a later line fails, so overselling cannot happen even with two counters
// billing at once.
func (h *Handler) HandleCreateBill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse billing form failed", err, "Invalid form data.", "/billing")
		return
	}

	lines, err := parseSaleLines(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad billing quantities", err, "Invalid quantity in the form.", "/billing")
		return
	}
	if len(lines) == 0 {
		h.renderFormWithError(w, r, "Select a quantity for at least one tile.")
		return
	}

	gst := parseFloatOr(r.FormValue("gst"), 0)
	discount := parseFloatOr(r.FormValue("discount"), 0)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// Decrement stock line by line; remember what was applied for rollback.
	var items []models.BillItem
	var applied []saleLine
	for _, line := range lines {
		tile, err := h.Tiles.GetByID(ctx, line.tileID)
		if err != nil {
			h.restore(ctx, applied)
			h.renderFormWithError(w, r, "One of the selected tiles no longer exists.")
			return
		}

		if err := h.Tiles.DecrementQuantity(ctx, line.tileID, line.qty); err != nil {
			h.restore(ctx, applied)
			if errors.Is(err, tilestore.ErrInsufficientStock) {
				h.renderFormWithError(w, r, "Not enough stock of "+tile.Brand+" "+tile.Size+".")
				return
			}
			h.ErrLog.LogServerError(w, r, "decrement stock failed", err, "Could not complete the sale.", "/billing")
			return
		}
		applied = append(applied, line)

		items = append(items, models.BillItem{
			TileName: tile.Brand,
			Size:     tile.Size,
			Price:    tile.Price,
			Quantity: line.qty,
		})
	}

	bill, err := h.Bills.Create(ctx, models.Bill{
		CustomerName:   htmlsanitize.Text(r.FormValue("customer_name")),
		CustomerMobile: htmlsanitize.Text(r.FormValue("customer_mobile")),
		Items:          items,
		GST:            gst,
		Discount:       discount,
	})
	if err != nil {
		h.restore(ctx, applied)
		h.ErrLog.LogServerError(w, r, "create bill failed", err, "Could not save the bill.", "/billing")
		return
	}

	h.Log.Info("bill created",
		zap.String("bill_id", bill.ID.Hex()),
		zap.Int("items", len(bill.Items)),
		zap.Float64("total", bill.Total))
	flash.Add(h.SessionMgr, w, r, "Bill created.")
	http.Redirect(w, r, "/invoice/"+bill.ID.Hex(), http.StatusSeeOther)
}

// restore puts back stock for decrements that already went through.
func (h *Handler) restore(ctx context.Context, applied []saleLine) {
	for _, line := range applied {
		if err := h.Tiles.RestoreQuantity(ctx, line.tileID, line.qty); err != nil {
			h.Log.Error("restore stock failed after aborted sale",
				zap.String("tile_id", line.tileID.Hex()),
				zap.Int("qty", line.qty),
				zap.Error(err))
		}
	}
}

func parseSaleLines(r *http.Request) ([]saleLine, error) {
	var lines []saleLine
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, "qty_") || len(values) == 0 {
			continue
		}
		raw := strings.TrimSpace(values[0])
		if raw == "" || raw == "0" {
			continue
		}

		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return nil, errors.New("quantity is not a whole number: " + raw)
		}
		if qty == 0 {
			continue
		}

		id, err := primitive.ObjectIDFromHex(strings.TrimPrefix(key, "qty_"))
		if err != nil {
			return nil, err
		}
		lines = append(lines, saleLine{tileID: id, qty: qty})
	}
	return lines, nil
}

func parseFloatOr(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tiles, err := h.Tiles.List(ctx, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tiles failed", err, "Could not load the stock list.", "/dashboard")
		return
	}

	templates.Render(w, r, "billing", billingFormData{
		BaseVM: viewdata.NewBaseVM(r, "Billing", "/dashboard"),
		Error:  msg,
		Tiles:  tiles,
	})
}
