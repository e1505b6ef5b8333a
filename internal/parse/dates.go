package parse

import (
	"fmt"
	"regexp"
	"time"

	"github.com/roach88/invoicer/internal/model"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{1,2}$`)
)

// Date parses "YYYY-M-D" with one or two digit month and day.
func Date(s string) (model.Date, error) {
	if !datePattern.MatchString(s) {
		return model.Date{}, fmt.Errorf("%q doesn't match date format YYYY-MM-DD", s)
	}
	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return model.DateOf(t), nil
}

// Month parses "YYYY-M" with a one or two digit month.
func Month(s string) (model.Month, error) {
	if !monthPattern.MatchString(s) {
		return model.Month{}, fmt.Errorf("%q doesn't match month format YYYY-MM", s)
	}
	t, err := time.Parse("2006-1", s)
	if err != nil {
		return model.Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return model.MonthOf(t), nil
}
