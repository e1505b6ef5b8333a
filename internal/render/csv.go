package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/invoicer/internal/model"
)

var timesheetHeader = []string{"Start", "End", "Duration", "Tickets", "Description"}

// WriteTimesheet writes rows as CSV with every field quoted. Tickets are
// joined by ", " and an absent duration is written as an empty field.
func WriteTimesheet(w io.Writer, rows []model.TimeWithTickets) error {
	bw := bufio.NewWriter(w)

	if err := writeQuotedRecord(bw, timesheetHeader); err != nil {
		return err
	}

	for _, r := range rows {
		tickets := make([]string, len(r.Tickets))
		for i, t := range r.Tickets {
			tickets[i] = t.String()
		}

		record := []string{
			r.Start.Format(model.TimestampLayout),
			r.End.Format(model.TimestampLayout),
			formatHours(r.Duration),
			strings.Join(tickets, ", "),
			r.Description,
		}
		if err := writeQuotedRecord(bw, record); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// writeQuotedRecord always quotes, which encoding/csv cannot be told to do.
func writeQuotedRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// formatHours renders 2.5 as "2.5" and 1 as "1.0".
func formatHours(d *float64) string {
	if d == nil {
		return ""
	}
	s := strconv.FormatFloat(*d, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
