package infra

// pdf.go renders receipts and sales reports with go-pdf/fpdf.
// Receipts use a 74mm wide page close to thermal paper; reports are A4.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/raw-dani/pos-only/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptFileName is the on-disk name of an invoice receipt.
func ReceiptFileName(inv *model.Invoice) string {
	return fmt.Sprintf("receipt_%s.pdf", inv.InvoiceNumber)
}

// SaveReceiptPDF writes the receipt under storagePath and returns its path.
func SaveReceiptPDF(inv *model.Invoice, store *model.Setting, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(storagePath, ReceiptFileName(inv))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	defer f.Close()

	if err := WriteReceiptPDF(f, inv, store); err != nil {
		return "", err
	}
	return path, nil
}

// WriteReceiptPDF renders a hydrated invoice (items and payments loaded).
func WriteReceiptPDF(w io.Writer, inv *model.Invoice, store *model.Setting) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 160},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8
	currency := store.Currency

	// Header
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(store.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	for _, line := range []*string{store.StoreAddress, store.StorePhone} {
		if line != nil && *line != "" {
			pdf.CellFormat(contentW, 4, tr(*line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, inv.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, inv.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if inv.Cashier != nil {
		pdf.CellFormat(contentW, 4, tr("Cashier: "+inv.Cashier.Name), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.50
	col2 := contentW * 0.14
	col3 := contentW * 0.36

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range inv.Items {
		name := item.ProductID.String()[:8]
		if item.Product != nil {
			name = item.Product.Name
		}
		if len(name) > 24 {
			name = name[:23] + "."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money(currency, item.Total), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	totalLine := func(label string, v decimal.Decimal) {
		pdf.CellFormat(col1+col2, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, money(currency, v), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	totalLine("Subtotal", inv.Subtotal)
	if !inv.Discount.IsZero() {
		totalLine("Discount", inv.Discount.Neg())
	}
	if !inv.Tax.IsZero() {
		totalLine("Tax", inv.Tax)
	}
	pdf.SetFont("Helvetica", "B", 9)
	totalLine("TOTAL", inv.Total)

	pdf.SetFont("Helvetica", "", 7)
	for _, p := range inv.Payments {
		label := "Paid"
		if p.Method != nil {
			label = "Paid (" + p.Method.Name + ")"
		}
		totalLine(tr(label), p.Amount)
		totalLine("Change", p.Change)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	footer := "Thank you for your purchase!"
	if store.ReceiptFooter != nil && *store.ReceiptFooter != "" {
		footer = *store.ReceiptFooter
	}
	pdf.MultiCell(contentW, 4, tr(footer), "", "C", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write receipt: %w", err)
	}
	return nil
}

// SalesReportDocument is the input for WriteSalesReportPDF.
type SalesReportDocument struct {
	StoreName  string
	Currency   string
	Period     string
	Invoices   []model.Invoice
	TotalSales decimal.Decimal
}

func WriteSalesReportPDF(w io.Writer, doc SalesReportDocument) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(doc.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Sales Report", "", 1, "C", false, 0, "")
	if doc.Period != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(doc.Period), "", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	widths := []float64{50, 35, 45, 20, 30}
	headers := []string{"Invoice", "Date", "Cashier", "Status", "Total"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		align := "L"
		if i == len(headers)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, inv := range doc.Invoices {
		cashier := ""
		if inv.Cashier != nil {
			cashier = inv.Cashier.Name
		}
		pdf.CellFormat(widths[0], 6, inv.InvoiceNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, inv.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(cashier), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, inv.Status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, money(doc.Currency, inv.Total), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	labelW := widths[0] + widths[1] + widths[2] + widths[3]
	pdf.CellFormat(labelW, 7, fmt.Sprintf("Total sales (%d invoices)", len(doc.Invoices)), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 7, money(doc.Currency, doc.TotalSales), "1", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write report: %w", err)
	}
	return nil
}

func money(currency string, v decimal.Decimal) string {
	return currency + " " + v.StringFixed(2)
}
