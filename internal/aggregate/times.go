package aggregate

import (
	"context"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// BuildTimes attaches each entry's tickets with one belonging-to load.
// The result has one element per entry, in entry order.
func BuildTimes(ctx context.Context, acc Accessor, times []model.TimeEntry) ([]model.TimeWithTickets, error) {
	links, err := acc.TicketTimesOf(ctx, times)
	if err != nil {
		return nil, belongingErr(queryir.TableTicketTime, err)
	}

	groups := GroupByParent(times, links,
		func(t model.TimeEntry) int64 { return t.ID },
		func(tt model.TicketTime) (int64, bool) { return tt.TimeID, true },
	)

	out := make([]model.TimeWithTickets, len(times))
	for i, t := range times {
		tickets := make([]model.Ticket, len(groups[i]))
		for j, link := range groups[i] {
			tickets[j] = link.Ticket()
		}
		out[i] = model.TimeWithTickets{TimeEntry: t, Tickets: tickets}
	}
	return out, nil
}

// BuildTimeListing flat-loads the entries matching filter and attaches
// their tickets.
func BuildTimeListing(ctx context.Context, acc Accessor, filter TimeFilter) ([]model.TimeWithTickets, error) {
	times, err := acc.LoadTimes(ctx, filter.Predicate())
	if err != nil {
		return nil, flatErr(queryir.TableTime, err)
	}
	return BuildTimes(ctx, acc, times)
}
