package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/invoicer/internal/model"
)

// Table writes list output as aligned columns with locale-aware numbers.
type Table struct {
	printer *message.Printer
}

// NewTable returns a Table formatting numbers for the BCP 47 locale tag.
// An unparseable tag falls back to English.
func NewTable(locale string) *Table {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Table{printer: message.NewPrinter(tag)}
}

func (t *Table) hours(v float64) string {
	return t.printer.Sprintf("%.2f", v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// WriteTimes lists time entries.
func (t *Table) WriteTimes(w io.Writer, rows []model.TimeWithTickets) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tHOURS\tACTIVITY\tTICKETS\tDESCRIPTION")
	for _, r := range rows {
		hours := "-"
		if r.Duration != nil {
			hours = t.hours(*r.Duration)
		}
		activity := "-"
		if r.ActivityID != nil {
			activity = fmt.Sprint(*r.ActivityID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Start.Format("2006-01-02 15:04"),
			r.End.Format("2006-01-02 15:04"),
			hours,
			activity,
			joinTickets(r.Tickets),
			r.Description,
		)
	}
	return tw.Flush()
}

// WriteActivities lists activities with their rollups.
func (t *Table) WriteActivities(w io.Writer, acts []model.ActivityWithRollup) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "NUM\tINVOICE\tHOURS\tUNIT PRICE\tAMOUNT\tTICKETS\tDESCRIPTION")
	for _, a := range acts {
		line := NewLine(a)
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Number,
			a.InvoiceNumber,
			t.hours(a.TotalDuration),
			t.printer.Sprintf("%.2f", line.UnitPrice.InexactFloat64()),
			t.printer.Sprintf("%.2f", line.Amount.InexactFloat64()),
			joinTickets(a.Tickets),
			a.Description,
		)
	}
	return tw.Flush()
}

// WriteInvoices lists invoices with their totals.
func (t *Table) WriteInvoices(w io.Writer, docs []model.InvoiceDocument) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "NUM\tMONTH\tCREATED\tRECIPIENT\tACTIVITIES\tHOURS\tTOTAL")
	for _, d := range docs {
		created := "-"
		if d.Created != nil {
			created = d.Created.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			d.Number,
			d.Month,
			created,
			d.Recipient.Name,
			len(d.Activities),
			t.hours(d.TotalDuration()),
			t.printer.Sprintf("%.2f", Total(Lines(d)).InexactFloat64()),
		)
	}
	return tw.Flush()
}

func joinTickets(tickets []model.Ticket) string {
	if len(tickets) == 0 {
		return "-"
	}
	s := make([]string, len(tickets))
	for i, tk := range tickets {
		s[i] = tk.String()
	}
	return strings.Join(s, ", ")
}
