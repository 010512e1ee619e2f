package tiles_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	"github.com/dalemusser/tilestock/internal/app/features/tiles"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*tiles.Handler, *tilestore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	store := tilestore.New(db)
	handler := tiles.NewHandler(store, sessionMgr, uierrors.NewErrorLogger(logger), logger)
	return handler, store, testutil.NewFixtures(t, db)
}

func TestHandleCreate_InsertsAndRedirects(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest("/tiles/new", "brand=Kajaria&size=600x600&price=45.50&quantity=120&buy_price=38")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()

	handler.HandleCreate(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/dashboard")

	got, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(got))
	}
	if got[0].Brand != "Kajaria" || got[0].Quantity != 120 {
		t.Errorf("stored tile wrong: %+v", got[0])
	}
	if got[0].BuyPrice == nil || *got[0].BuyPrice != 38 {
		t.Errorf("buy price not stored: %+v", got[0].BuyPrice)
	}
}

func TestHandleCreate_StripsMarkup(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest("/tiles/new", "brand=%3Cscript%3Ealert(1)%3C%2Fscript%3EKajaria&size=600x600&price=45&quantity=10")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()

	handler.HandleCreate(rec.ResponseRecorder, req)

	got, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(got))
	}
	if got[0].Brand != "Kajaria" {
		t.Errorf("expected markup stripped from brand, got %q", got[0].Brand)
	}
}

func TestHandleEdit_UpdatesAndRedirects(t *testing.T) {
	handler, store, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tile := fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 10)

	req := testutil.NewFormRequest("/tiles/"+tile.ID.Hex()+"/edit", "brand=Kajaria&size=600x600&price=48&quantity=25")
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", tile.ID.Hex())
	rec := testutil.NewRecorder()

	handler.HandleEdit(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/dashboard")

	got, err := store.GetByID(ctx, tile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Price != 48 || got.Quantity != 25 {
		t.Errorf("tile not updated: %+v", got)
	}
}

func TestHandleDelete_RemovesAndRedirects(t *testing.T) {
	handler, store, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tile := fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 10)

	req := testutil.NewAuthenticatedRequest("POST", "/tiles/"+tile.ID.Hex()+"/delete", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", tile.ID.Hex())
	rec := testutil.NewRecorder()

	handler.HandleDelete(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/dashboard")

	if tiles, _ := store.List(ctx, ""); len(tiles) != 0 {
		t.Errorf("expected tile removed, still have %d", len(tiles))
	}
}

func TestHandleDelete_BadID(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/tiles/nothex/delete", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", "nothex")
	rec := testutil.NewRecorder()

	// The error page render panics without initialized templates.
	func() {
		defer func() { recover() }()
		handler.HandleDelete(rec.ResponseRecorder, req)
	}()

	if rec.Code == http.StatusSeeOther {
		t.Error("bad id must not redirect as success")
	}
}
