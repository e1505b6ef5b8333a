package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/invoicer/internal/model"
)

// TokenKind is what an amend token was recognized as.
type TokenKind int

const (
	TokenActivity TokenKind = iota + 1
	TokenTicket
	TokenDate
	TokenTimeRange
	TokenDescription
)

func (k TokenKind) String() string {
	switch k {
	case TokenActivity:
		return "activity"
	case TokenTicket:
		return "ticket"
	case TokenDate:
		return "date"
	case TokenTimeRange:
		return "time range"
	case TokenDescription:
		return "description"
	default:
		return "unknown"
	}
}

// ErrUnrecognized is returned for a token no pattern accepts.
var ErrUnrecognized = errors.New("unrecognized amend token")

var activityPattern = regexp.MustCompile(`^\d+$`)

// Classify recognizes a token. Patterns are tried in fixed order: activity
// number, ticket, date, time range, then description. Anything left over is
// a description only if it contains a space; single words are rejected so a
// mistyped ticket or range isn't stored as the description.
func Classify(token string) (TokenKind, error) {
	switch {
	case activityPattern.MatchString(token):
		return TokenActivity, nil
	case model.TicketPattern.MatchString(token):
		return TokenTicket, nil
	case datePattern.MatchString(token):
		return TokenDate, nil
	case timeRangePattern.MatchString(token):
		return TokenTimeRange, nil
	case strings.Contains(token, " "):
		return TokenDescription, nil
	default:
		return 0, fmt.Errorf("%w %q: use --desc for a single-word description", ErrUnrecognized, token)
	}
}

// Amendment collects the changes requested for one time entry.
type Amendment struct {
	Activity    *int64
	Tickets     []model.Ticket
	Date        *model.Date
	Range       *TimeRange
	Description *string
}

// ParseAmendment classifies every token. Tickets may repeat; any other kind
// may appear at most once.
func ParseAmendment(tokens []string) (Amendment, error) {
	var a Amendment
	for _, tok := range tokens {
		kind, err := Classify(tok)
		if err != nil {
			return Amendment{}, err
		}

		switch kind {
		case TokenActivity:
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return Amendment{}, fmt.Errorf("parse activity %q: %w", tok, err)
			}
			if a.Activity != nil {
				return Amendment{}, duplicate(kind, tok)
			}
			a.Activity = &n
		case TokenTicket:
			t, err := model.ParseTicket(tok)
			if err != nil {
				return Amendment{}, err
			}
			a.Tickets = append(a.Tickets, t)
		case TokenDate:
			d, err := Date(tok)
			if err != nil {
				return Amendment{}, err
			}
			if a.Date != nil {
				return Amendment{}, duplicate(kind, tok)
			}
			a.Date = &d
		case TokenTimeRange:
			r, err := ParseTimeRange(tok)
			if err != nil {
				return Amendment{}, err
			}
			if a.Range != nil {
				return Amendment{}, duplicate(kind, tok)
			}
			a.Range = &r
		case TokenDescription:
			if a.Description != nil {
				return Amendment{}, duplicate(kind, tok)
			}
			desc := tok
			a.Description = &desc
		}
	}
	return a, nil
}

func duplicate(kind TokenKind, tok string) error {
	return fmt.Errorf("%s given more than once (at %q)", kind, tok)
}

// IsEmpty reports whether the amendment changes nothing.
func (a Amendment) IsEmpty() bool {
	return a.Activity == nil && len(a.Tickets) == 0 && a.Date == nil && a.Range == nil && a.Description == nil
}

// Apply returns the entry with the amendment's column changes. Tickets are
// not part of the entry and are attached separately.
//
// An entry belongs to the day it ends on, the day log anchors an H-D range
// to. A new date moves the entry to that day keeping its times of day. A new
// range replaces the times on the entry's (possibly new) day and resets the
// duration to the range length.
func (a Amendment) Apply(entry model.TimeEntry) model.TimeEntry {
	if a.Date != nil {
		shift := a.Date.Time().Sub(entryDay(entry).Time())
		entry.Start = entry.Start.Add(shift)
		entry.End = entry.End.Add(shift)
	}
	if a.Range != nil {
		entry.Start, entry.End = a.Range.On(entryDay(entry))
		hours := a.Range.Hours()
		entry.Duration = &hours
	}
	if a.Activity != nil {
		id := *a.Activity
		entry.ActivityID = &id
	}
	if a.Description != nil {
		entry.Description = *a.Description
	}
	return entry
}

// entryDay is the day an entry ends on. An entry ending exactly at midnight
// belongs to the day before.
func entryDay(entry model.TimeEntry) model.Date {
	if entry.End.After(entry.Start) {
		return model.DateOf(entry.End.Add(-time.Nanosecond))
	}
	return model.DateOf(entry.Start)
}
