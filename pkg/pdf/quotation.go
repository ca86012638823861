package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Line is one rendered row of a quotation document.
type Line struct {
	Name       string
	QuantityKg int
	UnitPrice  decimal.Decimal
	Amount     decimal.Decimal
}

// Document is the point-in-time quotation breakdown handed to the renderer.
// All values are pre-computed; rendering never re-queries catalog prices.
type Document struct {
	Reference     string
	CompanyName   string
	Country       string
	Currency      string
	Lines         []Line
	Subtotal      decimal.Decimal
	DutiesPercent decimal.Decimal
	Total         decimal.Decimal
}

// Render writes the quotation as an A4 PDF.
func Render(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Quotation %s", doc.Reference), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Export Quotation")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Reference: %s", doc.Reference))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %s (%s)", doc.CompanyName, doc.Country))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Currency: %s", doc.Currency))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 8, "Spice", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Qty (kg)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Unit Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(70, 8, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", line.QuantityKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, line.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, line.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 8, "Subtotal", "0", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, doc.Subtotal.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(140, 8, fmt.Sprintf("Export duties (%s%%)", doc.DutiesPercent.StringFixed(2)), "0", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, doc.Total.Sub(doc.Subtotal).StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(140, 8, "Total", "0", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, doc.Total.StringFixed(2), "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}
