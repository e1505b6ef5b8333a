package render

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/invoicer/internal/model"
)

// Line is one priced activity on an invoice.
type Line struct {
	Activity  model.ActivityWithRollup
	Hours     decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal // UnitPrice * Hours, rounded to cents
}

// Lines prices every activity of the document in document order.
func Lines(doc model.InvoiceDocument) []Line {
	lines := make([]Line, len(doc.Activities))
	for i, a := range doc.Activities {
		lines[i] = NewLine(a)
	}
	return lines
}

// NewLine prices one activity. Rounding is half away from zero.
func NewLine(a model.ActivityWithRollup) Line {
	hours := decimal.NewFromFloat(a.TotalDuration)
	price := decimal.NewFromFloat(a.UnitPrice)
	return Line{
		Activity:  a,
		Hours:     hours,
		UnitPrice: price,
		Amount:    price.Mul(hours).Round(2),
	}
}

// Total sums the rounded line amounts, so the total always equals what
// the lines show.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
