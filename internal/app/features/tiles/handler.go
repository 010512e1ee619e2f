// internal/app/features/tiles/handler.go
package tiles

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/app/system/flash"
	"github.com/dalemusser/tilestock/internal/app/system/htmlsanitize"
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
	Tiles      *tilestore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(tiles *tilestore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tiles:      tiles,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type tileFormData struct {
	viewdata.BaseVM
	Error    string
	Tile     models.Tile
	IsEdit   bool
	ActionTo string
}

// ServeNew handles GET /tiles/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "tile_form", tileFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Add Tile", "/dashboard"),
		ActionTo: "/tiles/new",
	})
}

// HandleCreate handles POST /tiles/new.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tile, formErr, err := h.tileFromForm(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse tile form failed", err, "Invalid form data.", "/tiles/new")
		return
	}
	if formErr != "" {
		h.renderForm(w, r, "Add Tile", formErr, tile, false, "/tiles/new")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Tiles.Create(ctx, tile)
	if err != nil {
		h.renderForm(w, r, "Add Tile", err.Error(), tile, false, "/tiles/new")
		return
	}

	h.Log.Info("tile created",
		zap.String("tile_id", created.ID.Hex()),
		zap.String("brand", created.Brand))
	flash.Add(h.SessionMgr, w, r, "Tile added.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ServeEdit handles GET /tiles/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad tile id", err, "Invalid tile.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tile, err := h.Tiles.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.LogNotFound(w, r, "tile not found", err, "That tile does not exist.", "/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "load tile failed", err, "Could not load the tile.", "/dashboard")
		return
	}

	h.renderForm(w, r, "Edit Tile", "", *tile, true, "/tiles/"+id.Hex()+"/edit")
}

// HandleEdit handles POST /tiles/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad tile id", err, "Invalid tile.", "/dashboard")
		return
	}

	tile, formErr, err := h.tileFromForm(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse tile form failed", err, "Invalid form data.", "/dashboard")
		return
	}
	action := "/tiles/" + id.Hex() + "/edit"
	if formErr != "" {
		tile.ID = id
		h.renderForm(w, r, "Edit Tile", formErr, tile, true, action)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tiles.Update(ctx, id, tile); err != nil {
		tile.ID = id
		h.renderForm(w, r, "Edit Tile", err.Error(), tile, true, action)
		return
	}

	h.Log.Info("tile updated", zap.String("tile_id", id.Hex()))
	flash.Add(h.SessionMgr, w, r, "Tile updated.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleDelete handles POST /tiles/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad tile id", err, "Invalid tile.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Tiles.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete tile failed", err, "Could not delete the tile.", "/dashboard")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "tile not found for delete", nil, "That tile does not exist.", "/dashboard")
		return
	}

	h.Log.Info("tile deleted", zap.String("tile_id", id.Hex()))
	flash.Add(h.SessionMgr, w, r, "Tile deleted.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// tileFromForm parses and sanitizes the tile form. The middle return value
// is a user-facing validation message; the error is for unparseable requests.
func (h *Handler) tileFromForm(r *http.Request) (models.Tile, string, error) {
	if err := r.ParseForm(); err != nil {
		return models.Tile{}, "", err
	}

	tile := models.Tile{
		Brand: htmlsanitize.Text(r.FormValue("brand")),
		Size:  htmlsanitize.Text(r.FormValue("size")),
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		return tile, "Please enter a valid selling price.", nil
	}
	tile.Price = price

	qty, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil {
		return tile, "Please enter a valid quantity.", nil
	}
	tile.Quantity = qty

	if raw := strings.TrimSpace(r.FormValue("buy_price")); raw != "" {
		buy, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return tile, "Please enter a valid buy price or leave it blank.", nil
		}
		tile.BuyPrice = &buy
	}

	return tile, "", nil
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, title, errMsg string, tile models.Tile, isEdit bool, action string) {
	templates.Render(w, r, "tile_form", tileFormData{
		BaseVM:   viewdata.NewBaseVM(r, title, "/dashboard"),
		Error:    errMsg,
		Tile:     tile,
		IsEdit:   isEdit,
		ActionTo: action,
	})
}
