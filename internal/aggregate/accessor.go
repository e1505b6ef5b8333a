package aggregate

import (
	"context"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// Accessor is the record store consumed by the builders.
//
// Flat loads return every record matching a predicate (nil = all).
// Belonging-to loads return every child whose foreign key matches any parent
// in the batch, in load order. An empty batch must return an empty slice.
// *store.Reader implements Accessor.
type Accessor interface {
	LoadInvoices(ctx context.Context, filter queryir.Predicate) ([]model.InvoiceRecipient, error)
	LoadActivities(ctx context.Context, filter queryir.Predicate) ([]model.Activity, error)
	LoadTimes(ctx context.Context, filter queryir.Predicate) ([]model.TimeEntry, error)

	ActivitiesOf(ctx context.Context, invoices []model.Invoice) ([]model.Activity, error)
	TimesOf(ctx context.Context, activities []model.Activity) ([]model.TimeEntry, error)
	TicketTimesOf(ctx context.Context, times []model.TimeEntry) ([]model.TicketTime, error)
}
