package render

import (
	"fmt"

	"github.com/roach88/invoicer/internal/model"
)

// InvoiceFilename is the default PDF name, e.g. "2024-5-tax-invoice-4.pdf".
// The month is not zero padded.
func InvoiceFilename(inv model.Invoice) string {
	return fmt.Sprintf("%d-%d-tax-invoice-%d.pdf", inv.Month.Year(), int(inv.Month.Month()), inv.Number)
}

// TimesheetFilename is the default CSV name, e.g. "2024-5-timesheet-4.csv".
func TimesheetFilename(inv model.Invoice) string {
	return fmt.Sprintf("%d-%d-timesheet-%d.csv", inv.Month.Year(), int(inv.Month.Month()), inv.Number)
}
