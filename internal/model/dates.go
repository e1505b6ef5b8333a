package model

import (
	"fmt"
	"time"
)

// Layouts used for persisted and user-facing dates.
const (
	MonthLayout     = "2006-01"
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Month is a calendar month. It is stored as the first day of the month.
type Month struct {
	first time.Time
}

// NewMonth returns the month of the given year.
func NewMonth(year int, month time.Month) Month {
	return Month{first: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return NewMonth(t.Year(), t.Month())
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string    { return m.first.Format(MonthLayout) }
func (m Month) Year() int         { return m.first.Year() }
func (m Month) Month() time.Month { return m.first.Month() }
func (m Month) IsZero() bool      { return m.first.IsZero() }

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time { return m.first }

// Next returns the following month.
func (m Month) Next() Month { return Month{first: m.first.AddDate(0, 1, 0)} }

// FirstDate returns the first day of the month as a Date.
func (m Month) FirstDate() Date { return DateOf(m.first) }

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Date is a calendar day without a time of day.
type Date struct {
	day time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{day: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string { return d.day.Format(DateLayout) }
func (d Date) IsZero() bool   { return d.day.IsZero() }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.day }

// At combines the day with a time of day given as an offset from midnight.
func (d Date) At(offset time.Duration) time.Time { return d.day.Add(offset) }

// Month returns the month containing the day.
func (d Date) Month() Month { return MonthOf(d.day) }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
