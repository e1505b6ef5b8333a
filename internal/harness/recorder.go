package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/invoicer/internal/aggregate"
	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// errInjected is returned by the method named in Query.FailOn.
var errInjected = errors.New("injected store failure")

// recorder wraps an Accessor and appends one TraceEvent per load.
type recorder struct {
	next   aggregate.Accessor
	failOn string
	seq    int64
	trace  []TraceEvent
}

var _ aggregate.Accessor = (*recorder)(nil)

func newRecorder(next aggregate.Accessor, failOn string) *recorder {
	return &recorder{next: next, failOn: failOn, trace: []TraceEvent{}}
}

// record runs load unless method is the injected failure.
func record[T any](r *recorder, method, phase string, batch int, load func() ([]T, error)) ([]T, error) {
	r.seq++
	event := TraceEvent{Seq: r.seq, Method: method, Phase: phase, Batch: batch}

	var rows []T
	var err error
	if method == r.failOn {
		err = fmt.Errorf("%s: %w", method, errInjected)
	} else {
		rows, err = load()
	}

	event.Rows = len(rows)
	event.Failed = err != nil
	r.trace = append(r.trace, event)
	return rows, err
}

func (r *recorder) LoadInvoices(ctx context.Context, filter queryir.Predicate) ([]model.InvoiceRecipient, error) {
	return record(r, "LoadInvoices", aggregate.PhaseFlat, 0, func() ([]model.InvoiceRecipient, error) {
		return r.next.LoadInvoices(ctx, filter)
	})
}

func (r *recorder) LoadActivities(ctx context.Context, filter queryir.Predicate) ([]model.Activity, error) {
	return record(r, "LoadActivities", aggregate.PhaseFlat, 0, func() ([]model.Activity, error) {
		return r.next.LoadActivities(ctx, filter)
	})
}

func (r *recorder) LoadTimes(ctx context.Context, filter queryir.Predicate) ([]model.TimeEntry, error) {
	return record(r, "LoadTimes", aggregate.PhaseFlat, 0, func() ([]model.TimeEntry, error) {
		return r.next.LoadTimes(ctx, filter)
	})
}

func (r *recorder) ActivitiesOf(ctx context.Context, invoices []model.Invoice) ([]model.Activity, error) {
	return record(r, "ActivitiesOf", aggregate.PhaseBelongingTo, len(invoices), func() ([]model.Activity, error) {
		return r.next.ActivitiesOf(ctx, invoices)
	})
}

func (r *recorder) TimesOf(ctx context.Context, activities []model.Activity) ([]model.TimeEntry, error) {
	return record(r, "TimesOf", aggregate.PhaseBelongingTo, len(activities), func() ([]model.TimeEntry, error) {
		return r.next.TimesOf(ctx, activities)
	})
}

func (r *recorder) TicketTimesOf(ctx context.Context, times []model.TimeEntry) ([]model.TicketTime, error) {
	return record(r, "TicketTimesOf", aggregate.PhaseBelongingTo, len(times), func() ([]model.TicketTime, error) {
		return r.next.TicketTimesOf(ctx, times)
	})
}
