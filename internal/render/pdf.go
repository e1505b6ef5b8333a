package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/invoicer/internal/model"
)

// Issuer is the party sending the invoice.
type Issuer struct {
	Name             string
	Address          string
	Currency         string // ISO 4217 code
	Locale           string // BCP 47 tag for number formatting
	PaymentTermsDays int
}

// PDFOptions configures invoice rendering.
type PDFOptions struct {
	Issuer Issuer

	// Today is printed as the issue date when the invoice has none.
	Today model.Date

	// Compress deflates page streams.
	Compress bool
}

var columnWidths = []float64{70, 40, 20, 30, 30}

// WriteInvoicePDF renders doc as an A4 invoice.
func WriteInvoicePDF(w io.Writer, doc model.InvoiceDocument, opts PDFOptions) error {
	tag, err := language.Parse(opts.Issuer.Locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	money := func(v float64) string {
		return fmt.Sprintf("%s %s", opts.Issuer.Currency, p.Sprintf("%.2f", v))
	}

	created := opts.Today
	if doc.Created != nil {
		created = *doc.Created
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(opts.Compress)
	pdf.SetTitle(fmt.Sprintf("Tax invoice %d", doc.Number), true)
	pdf.SetAuthor(opts.Issuer.Name, true)
	pdf.SetCreationDate(created.Time())
	pdf.SetModificationDate(created.Time())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TAX INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, tr(opts.Issuer.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(expandAddress(opts.Issuer.Address)), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 5, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(doc.Recipient.Name), "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 5, tr(expandAddress(doc.Recipient.Address)), "", "L", false)
	pdf.Ln(6)

	meta := [][2]string{
		{"Invoice number", fmt.Sprint(doc.Number)},
		{"Billing month", doc.Month.String()},
		{"Issued", created.String()},
	}
	if opts.Issuer.PaymentTermsDays > 0 {
		due := model.DateOf(created.Time().AddDate(0, 0, opts.Issuer.PaymentTermsDays))
		meta = append(meta, [2]string{"Due", due.String()})
	}
	for _, kv := range meta {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 5, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	header := []string{"Description", "Tickets", "Hours", "Unit price", "Amount"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(columnWidths[i], 7, h, "1", 0, alignFor(i), true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lines := Lines(doc)
	for _, l := range lines {
		cells := []string{
			tr(l.Activity.Description),
			tr(strings.Join(l.Activity.Tickets.Strings(), ", ")),
			p.Sprintf("%.2f", l.Hours.InexactFloat64()),
			money(l.UnitPrice.InexactFloat64()),
			money(l.Amount.InexactFloat64()),
		}
		for i, c := range cells {
			pdf.CellFormat(columnWidths[i], 7, truncate(pdf, c, columnWidths[i]-2), "1", 0, alignFor(i), false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	labelWidth := columnWidths[0] + columnWidths[1] + columnWidths[2] + columnWidths[3]
	pdf.CellFormat(labelWidth, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(columnWidths[4], 8, money(Total(lines).InexactFloat64()), "1", 1, "R", false, 0, "")

	if opts.Issuer.PaymentTermsDays > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Payment is due within %d days of the issue date.", opts.Issuer.PaymentTermsDays), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %d: %w", doc.Number, err)
	}
	return nil
}

// expandAddress turns stored literal "\n" sequences into line breaks.
func expandAddress(addr string) string {
	return strings.ReplaceAll(addr, `\n`, "\n")
}

func alignFor(col int) string {
	if col >= 2 {
		return "R"
	}
	return "L"
}

// truncate shortens s with an ellipsis until it fits width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s + "..."
}
