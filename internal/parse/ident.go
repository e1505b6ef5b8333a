package parse

import (
	"fmt"
	"strconv"

	"github.com/roach88/invoicer/internal/aggregate"
	"github.com/roach88/invoicer/internal/model"
)

// DocIdent identifies an invoice by number or by billing month.
type DocIdent struct {
	number *int64
	month  model.Month
}

// NumberIdent identifies invoice n.
func NumberIdent(n int64) DocIdent {
	return DocIdent{number: &n}
}

// MonthIdent identifies the invoice billed for m.
func MonthIdent(m model.Month) DocIdent {
	return DocIdent{month: m}
}

// Ident parses an invoice number or a "YYYY-MM" month.
func Ident(s string) (DocIdent, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NumberIdent(n), nil
	}
	if m, err := Month(s); err == nil {
		return MonthIdent(m), nil
	}
	return DocIdent{}, fmt.Errorf("%q doesn't match format of numeric id or month", s)
}

// IdentOrDefault parses args[0] when present, otherwise identifies the
// invoice for the month containing now.
func IdentOrDefault(args []string, now model.Date) (DocIdent, error) {
	if len(args) == 0 {
		return MonthIdent(now.Month()), nil
	}
	return Ident(args[0])
}

// Number returns the invoice number, if the identifier is numeric.
func (d DocIdent) Number() (int64, bool) {
	if d.number == nil {
		return 0, false
	}
	return *d.number, true
}

// Filter converts the identifier to an invoice filter.
func (d DocIdent) Filter() aggregate.InvoiceFilter {
	if d.number != nil {
		return aggregate.InvoiceByNumber(*d.number)
	}
	return aggregate.InvoiceByMonth(d.month)
}

func (d DocIdent) String() string {
	if d.number != nil {
		return strconv.FormatInt(*d.number, 10)
	}
	return d.month.String()
}
