// Package pdfgen renders the printable documents: customer invoices and the
// stock availability report. Amounts are printed as "Rs." because the core
// PDF fonts are latin-1 only.
package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/go-pdf/fpdf"
)

const shopName = "Sita Ram Traders"

// InvoicePDF renders one bill as an A4 invoice.
func InvoicePDF(bill *models.Bill) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", bill.ID.Hex()), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice #%s", bill.ID.Hex()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	customer := bill.CustomerName
	if customer == "" {
		customer = "Walk-in"
	}
	pdf.CellFormat(0, 6, "Customer: "+customer, "", 1, "L", false, 0, "")
	if bill.CustomerMobile != "" {
		pdf.CellFormat(0, 6, "Mobile: "+bill.CustomerMobile, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Date: "+bill.Date.Format("02-01-2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	widths := []float64{70, 30, 25, 20, 35}
	headers := []string{"Tile", "Size", "Price", "Qty", "Total"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range bill.Items {
		pdf.CellFormat(widths[0], 7, it.TileName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, it.Size, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, money(it.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals block
	pdf.SetFont("Helvetica", "", 10)
	totalRow(pdf, "Subtotal", money(bill.Subtotal()))
	totalRow(pdf, fmt.Sprintf("GST (%.1f%%)", bill.GST), money(bill.GSTAmount()))
	totalRow(pdf, "Discount", "-"+money(bill.Discount))
	pdf.SetFont("Helvetica", "B", 11)
	totalRow(pdf, "Grand Total", money(bill.Total))

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// StockPDF renders the current stock list with an as-of timestamp.
func StockPDF(tiles []models.Tile, asOf time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Stock Availability", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Stock Availability - "+asOf.Format("02-01-2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	widths := []float64{80, 40, 30, 30}
	headers := []string{"Brand", "Size", "Price", "Quantity"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, tile := range tiles {
		pdf.CellFormat(widths[0], 7, tile.Brand, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tile.Size, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(tile.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", tile.Quantity), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render stock pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

func totalRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(145, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, value, "", 1, "R", false, 0, "")
}
