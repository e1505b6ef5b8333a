package aggregate

import (
	"cmp"
	"slices"

	"github.com/roach88/invoicer/internal/model"
)

// Timesheet flattens the time entries of every activity on the invoice,
// ordered by start time then id.
func Timesheet(doc model.InvoiceDocument) []model.TimeWithTickets {
	var rows []model.TimeWithTickets
	for _, a := range doc.Activities {
		rows = append(rows, a.Times...)
	}

	slices.SortStableFunc(rows, func(a, b model.TimeWithTickets) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if rows == nil {
		rows = []model.TimeWithTickets{}
	}
	return rows
}
