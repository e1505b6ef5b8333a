package aggregate

import (
	"context"
	"errors"
	"slices"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// fakeAccessor serves fixed rows and records every call. Flat loads ignore
// the predicate unless a match function is set.
type fakeAccessor struct {
	invoices    []model.InvoiceRecipient
	activities  []model.Activity
	times       []model.TimeEntry
	ticketTimes []model.TicketTime

	matchInvoice func(queryir.Predicate, model.InvoiceRecipient) bool

	failOn string // call name that returns errStore
	calls  []string
}

var errStore = errors.New("disk on fire")

func (f *fakeAccessor) record(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errStore
	}
	return nil
}

func (f *fakeAccessor) LoadInvoices(_ context.Context, p queryir.Predicate) ([]model.InvoiceRecipient, error) {
	if err := f.record("LoadInvoices"); err != nil {
		return nil, err
	}
	out := []model.InvoiceRecipient{}
	for _, inv := range f.invoices {
		if f.matchInvoice == nil || f.matchInvoice(p, inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeAccessor) LoadActivities(_ context.Context, _ queryir.Predicate) ([]model.Activity, error) {
	if err := f.record("LoadActivities"); err != nil {
		return nil, err
	}
	return slices.Clone(f.activities), nil
}

func (f *fakeAccessor) LoadTimes(_ context.Context, _ queryir.Predicate) ([]model.TimeEntry, error) {
	if err := f.record("LoadTimes"); err != nil {
		return nil, err
	}
	return slices.Clone(f.times), nil
}

func (f *fakeAccessor) ActivitiesOf(_ context.Context, invoices []model.Invoice) ([]model.Activity, error) {
	if err := f.record("ActivitiesOf"); err != nil {
		return nil, err
	}
	out := []model.Activity{}
	for _, a := range f.activities {
		if slices.ContainsFunc(invoices, func(inv model.Invoice) bool { return inv.Number == a.InvoiceNumber }) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccessor) TimesOf(_ context.Context, activities []model.Activity) ([]model.TimeEntry, error) {
	if err := f.record("TimesOf"); err != nil {
		return nil, err
	}
	out := []model.TimeEntry{}
	for _, t := range f.times {
		if t.ActivityID == nil {
			continue
		}
		if slices.ContainsFunc(activities, func(a model.Activity) bool { return a.Number == *t.ActivityID }) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAccessor) TicketTimesOf(_ context.Context, times []model.TimeEntry) ([]model.TicketTime, error) {
	if err := f.record("TicketTimesOf"); err != nil {
		return nil, err
	}
	out := []model.TicketTime{}
	for _, tt := range f.ticketTimes {
		if slices.ContainsFunc(times, func(t model.TimeEntry) bool { return t.ID == tt.TimeID }) {
			out = append(out, tt)
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func tt(key string, num, timeID int64) model.TicketTime {
	return model.TicketTime{ProjectKey: key, Number: num, TimeID: timeID}
}

func ticket(key string, num int64) model.Ticket {
	return model.Ticket{ProjectKey: key, Number: num}
}

func invoiceRow(num int64) model.InvoiceRecipient {
	return model.InvoiceRecipient{
		Invoice:   model.Invoice{Number: num, RecipientID: "acme"},
		Recipient: model.Recipient{ID: "acme", Name: "Acme Ltd"},
	}
}
