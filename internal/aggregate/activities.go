package aggregate

import (
	"context"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// BuildActivities attaches each activity's time entries (with tickets) and
// computes its rollups. The result has one element per activity, in
// activity order.
func BuildActivities(ctx context.Context, acc Accessor, activities []model.Activity) ([]model.ActivityWithRollup, error) {
	entries, err := acc.TimesOf(ctx, activities)
	if err != nil {
		return nil, belongingErr(queryir.TableTime, err)
	}

	times, err := BuildTimes(ctx, acc, entries)
	if err != nil {
		return nil, err
	}

	groups := GroupByParent(activities, times,
		func(a model.Activity) int64 { return a.Number },
		func(t model.TimeWithTickets) (int64, bool) {
			if t.ActivityID == nil {
				return 0, false
			}
			return *t.ActivityID, true
		},
	)

	out := make([]model.ActivityWithRollup, len(activities))
	for i, a := range activities {
		out[i] = rollup(a, groups[i])
	}
	return out, nil
}

// rollup sums durations (absent counts as zero) and unions tickets.
func rollup(a model.Activity, times []model.TimeWithTickets) model.ActivityWithRollup {
	var total float64
	var tickets []model.Ticket
	for _, t := range times {
		total += t.Hours()
		tickets = append(tickets, t.Tickets...)
	}

	return model.ActivityWithRollup{
		Activity:      a,
		Times:         times,
		TotalDuration: total,
		Tickets:       model.NewTicketSet(tickets...),
	}
}

// BuildActivityRollups loads the activities matching filter and builds
// their rollups, ordered by activity number.
func BuildActivityRollups(ctx context.Context, acc Accessor, filter ActivityFilter) ([]model.ActivityWithRollup, error) {
	var (
		activities []model.Activity
		err        error
	)

	if filter.month != nil {
		var invoices []model.InvoiceRecipient
		invoices, err = acc.LoadInvoices(ctx, InvoiceByMonth(*filter.month).Predicate())
		if err != nil {
			return nil, flatErr(queryir.TableInvoice, err)
		}
		activities, err = acc.ActivitiesOf(ctx, invoiceHeaders(invoices))
		if err != nil {
			return nil, belongingErr(queryir.TableActivity, err)
		}
	} else {
		activities, err = acc.LoadActivities(ctx, filter.predicate)
		if err != nil {
			return nil, flatErr(queryir.TableActivity, err)
		}
	}

	built, err := BuildActivities(ctx, acc, activities)
	if err != nil {
		return nil, err
	}
	sortByNumber(built)
	return built, nil
}
