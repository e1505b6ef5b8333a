package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/roach88/invoicer/internal/model"
)

var timeRangePattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?([+-])(\d{1,2}(?:\.\d)?)$`)

// TimeRange is a span within a day, as offsets from midnight.
// Start may be negative when a range ending early in the morning reaches
// back into the previous day.
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

// ParseTimeRange parses "H[:MM]+D" (start plus duration) or "H[:MM]-D"
// (end minus duration). D is in hours with at most one decimal and is
// rounded to the minute.
func ParseTimeRange(s string) (TimeRange, error) {
	m := timeRangePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeRange{}, fmt.Errorf("%q doesn't match time range format H[:MM]+D or H[:MM]-D", s)
	}

	hours, _ := strconv.Atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	if hours > 23 || minutes > 59 {
		return TimeRange{}, fmt.Errorf("invalid time %d:%02d in %q", hours, minutes, s)
	}

	dur, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse duration %q: %w", m[4], err)
	}

	primary := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	offset := time.Duration(math.Round(dur*60)) * time.Minute

	if m[3] == "-" {
		return TimeRange{Start: primary - offset, End: primary}, nil
	}
	return TimeRange{Start: primary, End: primary + offset}, nil
}

// On anchors the range to a calendar day.
func (r TimeRange) On(d model.Date) (start, end time.Time) {
	return d.At(r.Start), d.At(r.End)
}

// Hours returns the length of the range in hours.
func (r TimeRange) Hours() float64 {
	return (r.End - r.Start).Hours()
}
