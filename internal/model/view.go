package model

// TimeWithTickets is a time entry with the tickets it was logged against,
// in load order and without deduplication.
type TimeWithTickets struct {
	TimeEntry
	Tickets []Ticket `json:"tickets"`
}

// ActivityWithRollup is an activity with its time entries and the
// aggregates computed over them.
type ActivityWithRollup struct {
	Activity
	Times         []TimeWithTickets `json:"times"`
	TotalDuration float64           `json:"total_duration"`
	Tickets       TicketSet         `json:"tickets"`
}

// InvoiceDocument is the fully assembled invoice ready for rendering.
// Activities are ordered by activity number.
type InvoiceDocument struct {
	Invoice
	Recipient  Recipient            `json:"recipient"`
	Activities []ActivityWithRollup `json:"activities"`
}

// TotalDuration returns the hours billed across all activities.
func (d InvoiceDocument) TotalDuration() float64 {
	var total float64
	for _, a := range d.Activities {
		total += a.TotalDuration
	}
	return total
}
