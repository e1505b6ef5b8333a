package model

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// TicketPattern matches a ticket reference such as "OPS-42".
// The project key must start with a letter so dates never parse as tickets.
var TicketPattern = regexp.MustCompile(`^(\pL[\pL\pN_]*)-(\d+)$`)

// Ticket identifies an issue in a project's tracker. It encodes as the
// "KEY-NUM" string in JSON and YAML.
type Ticket struct {
	ProjectKey string
	Number     int64
}

// ParseTicket parses "KEY-NUM". Project keys are NFC-normalized so the
// same key typed on different systems compares equal.
func ParseTicket(s string) (Ticket, error) {
	m := TicketPattern.FindStringSubmatch(norm.NFC.String(s))
	if m == nil {
		return Ticket{}, fmt.Errorf("%q doesn't match ticket format KEY-NUM", s)
	}
	num, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Ticket{}, fmt.Errorf("parse ticket number %q: %w", m[2], err)
	}
	return Ticket{ProjectKey: m[1], Number: num}, nil
}

func (t Ticket) String() string {
	return fmt.Sprintf("%s-%d", t.ProjectKey, t.Number)
}

// Compare orders tickets by project key, then numerically by number.
func (t Ticket) Compare(o Ticket) int {
	if c := cmp.Compare(t.ProjectKey, o.ProjectKey); c != 0 {
		return c
	}
	return cmp.Compare(t.Number, o.Number)
}

// MarshalText renders the ticket as "KEY-NUM".
func (t Ticket) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses "KEY-NUM".
func (t *Ticket) UnmarshalText(b []byte) error {
	parsed, err := ParseTicket(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TicketSet is a sorted, duplicate-free list of tickets.
// Construct it with NewTicketSet; the zero value is an empty set.
type TicketSet []Ticket

// NewTicketSet returns the ordered, deduplicated union of tickets.
// The result is never nil.
func NewTicketSet(tickets ...Ticket) TicketSet {
	set := make(TicketSet, len(tickets))
	copy(set, tickets)
	slices.SortFunc(set, Ticket.Compare)
	return slices.CompactFunc(set, func(a, b Ticket) bool { return a == b })
}

// Contains reports whether t is in the set.
func (s TicketSet) Contains(t Ticket) bool {
	_, found := slices.BinarySearchFunc(s, t, Ticket.Compare)
	return found
}

// Strings renders every ticket as "KEY-NUM".
func (s TicketSet) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.String()
	}
	return out
}
