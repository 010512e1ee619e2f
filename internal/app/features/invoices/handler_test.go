package invoices_test

import (
	"math"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	"github.com/dalemusser/tilestock/internal/app/features/invoices"
	billstore "github.com/dalemusser/tilestock/internal/app/store/bills"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/tilestock/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*invoices.Handler, *billstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	store := billstore.New(db)
	handler := invoices.NewHandler(store, sessionMgr, uierrors.NewErrorLogger(logger), logger)
	return handler, store, testutil.NewFixtures(t, db)
}

func TestServeInvoicePDF_ReturnsPDF(t *testing.T) {
	handler, _, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bill := fixtures.CreateBill(ctx, "Ravi", time.Now(), 450)

	req := testutil.NewAuthenticatedRequest("GET", "/invoice/"+bill.ID.Hex()+"/pdf", testutil.StaffUser())
	req = testutil.WithChiURLParam(req, "id", bill.ID.Hex())
	rec := testutil.NewRecorder()

	handler.ServeInvoicePDF(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type: got %q", got)
	}
	body := rec.Body.Bytes()
	if len(body) < 4 || string(body[:4]) != "%PDF" {
		t.Error("expected a PDF payload")
	}
}

func TestHandleDelete_RemovesBill(t *testing.T) {
	handler, store, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bill := fixtures.CreateBill(ctx, "Ravi", time.Now(), 450)

	req := testutil.NewAuthenticatedRequest("POST", "/invoice/"+bill.ID.Hex()+"/delete", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", bill.ID.Hex())
	rec := testutil.NewRecorder()

	handler.HandleDelete(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/history")

	if _, err := store.GetByID(ctx, bill.ID); err == nil {
		t.Error("expected bill to be deleted")
	}
}

func TestHandleEdit_UpdatesQuantitiesAndTotal(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Bill{
		CustomerName: "Ravi",
		Items: []models.BillItem{
			{TileName: "Kajaria", Size: "600x600", Price: 45, Quantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := testutil.NewFormRequest("/invoice/"+created.ID.Hex()+"/edit",
		"customer_name=Ravi+Kumar&customer_mobile=9876543210&gst=0&discount=0&item_qty_0=4")
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()

	handler.HandleEdit(rec.ResponseRecorder, req)

	rec.AssertRedirect(t, "/invoice/"+created.ID.Hex())

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CustomerName != "Ravi Kumar" {
		t.Errorf("customer name not updated: %q", got.CustomerName)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 4 {
		t.Fatalf("item quantity not updated: %+v", got.Items)
	}
	if math.Abs(got.Total-180) > 0.001 {
		t.Errorf("expected recomputed total 180, got %.2f", got.Total)
	}
}

func TestHandleEdit_ZeroQuantityDropsLine(t *testing.T) {
	handler, store, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Bill{
		Items: []models.BillItem{
			{TileName: "Kajaria", Size: "600x600", Price: 45, Quantity: 10},
			{TileName: "Somany", Size: "300x300", Price: 22, Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := testutil.NewFormRequest("/invoice/"+created.ID.Hex()+"/edit",
		"gst=0&discount=0&item_qty_0=0&item_qty_1=5")
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()

	handler.HandleEdit(rec.ResponseRecorder, req)

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].TileName != "Somany" {
		t.Errorf("expected zero-quantity line dropped, got %+v", got.Items)
	}
}
