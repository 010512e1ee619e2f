// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/app/system/flash"
	"github.com/dalemusser/tilestock/internal/app/system/timeouts"
	"github.com/dalemusser/tilestock/internal/app/system/viewdata"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
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

type dashboardData struct {
	viewdata.BaseVM
	Tiles  []models.Tile
	Search string
}

// ServeDashboard handles GET /dashboard. The optional search query filters
// the stock list by brand or size.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	search := query.Get(r, "search")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tiles, err := h.Tiles.List(ctx, search)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tiles failed", err, "Could not load the stock list.", "/dashboard")
		return
	}

	vm := viewdata.NewBaseVM(r, "Dashboard", "/dashboard")
	vm.Flashes = flash.Pop(h.SessionMgr, w, r)

	templates.Render(w, r, "dashboard", dashboardData{
		BaseVM: vm,
		Tiles:  tiles,
		Search: search,
	})
}
