package aggregate

import (
	"strconv"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
)

// InvoiceFilter selects invoices at the flat-load stage.
type InvoiceFilter struct {
	predicate queryir.Predicate
	label     string
}

// InvoiceByNumber matches the invoice with number n.
func InvoiceByNumber(n int64) InvoiceFilter {
	return InvoiceFilter{
		predicate: queryir.Equals{Field: "inv_num", Value: queryir.Int(n)},
		label:     strconv.FormatInt(n, 10),
	}
}

// InvoiceByMonth matches invoices billed for month m.
func InvoiceByMonth(m model.Month) InvoiceFilter {
	return InvoiceFilter{
		predicate: queryir.Equals{Field: "inv_month", Value: queryir.Month(m)},
		label:     m.String(),
	}
}

// AllInvoices matches every invoice.
func AllInvoices() InvoiceFilter {
	return InvoiceFilter{label: "all"}
}

// Predicate returns the filter in queryir form; nil matches everything.
func (f InvoiceFilter) Predicate() queryir.Predicate { return f.predicate }

func (f InvoiceFilter) String() string { return f.label }

// ActivityFilter selects activities. A month filter goes through the
// invoices billed for that month since activities carry no month.
type ActivityFilter struct {
	predicate queryir.Predicate
	month     *model.Month
	label     string
}

// ActivitiesOfInvoice matches the activities billed on invoice n.
func ActivitiesOfInvoice(n int64) ActivityFilter {
	return ActivityFilter{
		predicate: queryir.Equals{Field: "inv_num", Value: queryir.Int(n)},
		label:     "invoice " + strconv.FormatInt(n, 10),
	}
}

// ActivitiesInMonth matches the activities of invoices billed for month m.
func ActivitiesInMonth(m model.Month) ActivityFilter {
	return ActivityFilter{month: &m, label: m.String()}
}

// AllActivities matches every activity.
func AllActivities() ActivityFilter {
	return ActivityFilter{label: "all"}
}

func (f ActivityFilter) String() string { return f.label }

// TimeFilter selects time entries.
type TimeFilter struct {
	predicates []queryir.Predicate
}

// TimesInMonth matches entries starting within month m.
func TimesInMonth(m model.Month) TimeFilter {
	return TimeFilter{predicates: []queryir.Predicate{queryir.Range{
		Field: "time_start",
		From:  queryir.Timestamp(m.First()),
		To:    queryir.Timestamp(m.Next().First()),
	}}}
}

// UnbilledTimes matches entries not assigned to an activity.
func UnbilledTimes() TimeFilter {
	return TimeFilter{predicates: []queryir.Predicate{queryir.IsNull{Field: "act_num"}}}
}

// AllTimes matches every entry.
func AllTimes() TimeFilter {
	return TimeFilter{}
}

// And returns a filter matching entries that satisfy both f and g.
func (f TimeFilter) And(g TimeFilter) TimeFilter {
	return TimeFilter{predicates: append(append([]queryir.Predicate{}, f.predicates...), g.predicates...)}
}

// Predicate returns the filter in queryir form; nil matches everything.
func (f TimeFilter) Predicate() queryir.Predicate {
	switch len(f.predicates) {
	case 0:
		return nil
	case 1:
		return f.predicates[0]
	default:
		return queryir.And{Predicates: f.predicates}
	}
}
