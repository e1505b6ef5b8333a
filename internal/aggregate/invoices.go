package aggregate

import (
	"cmp"
	"context"
	"slices"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// BuildInvoices attaches each invoice's activities, ordered by activity
// number, and pairs it with its recipient. The result has one document per
// input row, in input order.
func BuildInvoices(ctx context.Context, acc Accessor, rows []model.InvoiceRecipient) ([]model.InvoiceDocument, error) {
	invoices := invoiceHeaders(rows)

	activities, err := acc.ActivitiesOf(ctx, invoices)
	if err != nil {
		return nil, belongingErr(queryir.TableActivity, err)
	}

	rollups, err := BuildActivities(ctx, acc, activities)
	if err != nil {
		return nil, err
	}

	groups := GroupByParent(invoices, rollups,
		func(inv model.Invoice) int64 { return inv.Number },
		func(a model.ActivityWithRollup) (int64, bool) { return a.InvoiceNumber, true },
	)

	docs := make([]model.InvoiceDocument, len(rows))
	for i, row := range rows {
		acts := slices.Clone(groups[i])
		sortByNumber(acts)
		docs[i] = model.InvoiceDocument{
			Invoice:    row.Invoice,
			Recipient:  row.Recipient,
			Activities: acts,
		}
	}
	return docs, nil
}

// BuildInvoiceDocuments flat-loads the invoices matching filter and
// assembles their documents. Zero, one or many documents may match.
func BuildInvoiceDocuments(ctx context.Context, acc Accessor, filter InvoiceFilter) ([]model.InvoiceDocument, error) {
	rows, err := acc.LoadInvoices(ctx, filter.Predicate())
	if err != nil {
		return nil, flatErr(queryir.TableInvoice, err)
	}
	return BuildInvoices(ctx, acc, rows)
}

func invoiceHeaders(rows []model.InvoiceRecipient) []model.Invoice {
	out := make([]model.Invoice, len(rows))
	for i, r := range rows {
		out[i] = r.Invoice
	}
	return out
}

func sortByNumber(acts []model.ActivityWithRollup) {
	slices.SortStableFunc(acts, func(a, b model.ActivityWithRollup) int {
		return cmp.Compare(a.Number, b.Number)
	})
}
