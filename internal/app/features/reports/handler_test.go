package reports_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	"github.com/dalemusser/tilestock/internal/app/features/reports"
	billstore "github.com/dalemusser/tilestock/internal/app/store/bills"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	handler := reports.NewHandler(tilestore.New(db), billstore.New(db), uierrors.NewErrorLogger(logger), logger)
	return handler, testutil.NewFixtures(t, db)
}

func TestServeStockPDF_ReturnsDatedDownload(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 100)
	fixtures.CreateTile(ctx, "Somany", "300x300", 22, 40)

	req := testutil.NewAuthenticatedRequest("GET", "/stock_availability_pdf", testutil.AdminUser())
	rec := testutil.NewRecorder()

	handler.ServeStockPDF(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type: got %q", got)
	}
	wantDisposition := `attachment; filename="stock_availability_` + time.Now().Format("2006-01-02") + `.pdf"`
	if got := rec.Header().Get("Content-Disposition"); got != wantDisposition {
		t.Errorf("Content-Disposition: got %q, want %q", got, wantDisposition)
	}
	body := rec.Body.Bytes()
	if len(body) < 4 || string(body[:4]) != "%PDF" {
		t.Error("expected a PDF payload")
	}
}

func TestServeSalesReport_OnlyTodaysBills(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBill(ctx, "Today A", time.Now(), 200)
	fixtures.CreateBill(ctx, "Today B", time.Now(), 150)
	fixtures.CreateBill(ctx, "Yesterday", time.Now().AddDate(0, 0, -1), 999)

	req := testutil.NewAuthenticatedRequest("GET", "/sales_report", testutil.StaffUser())
	rec := testutil.NewRecorder()

	// Handler will try to render a template which will panic without
	// initialized templates.
	func() {
		defer func() { recover() }()
		handler.ServeSalesReport(rec.ResponseRecorder, req)
	}()

	bills, err := billstore.New(fixtures.DB()).ListByDay(ctx, time.Now())
	if err != nil {
		t.Fatalf("ListByDay failed: %v", err)
	}
	if len(bills) != 2 {
		t.Errorf("expected 2 bills for today, got %d", len(bills))
	}
}
