package model

import "time"

// Project is a ticket namespace (e.g. "OPS").
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// TicketTime links a ticket to a time entry.
type TicketTime struct {
	ProjectKey string `json:"project_key"`
	Number     int64  `json:"number"`
	TimeID     int64  `json:"time_id"`
}

// Ticket returns the referenced ticket.
func (tt TicketTime) Ticket() Ticket {
	return Ticket{ProjectKey: tt.ProjectKey, Number: tt.Number}
}

// TimeEntry is a logged span of billable work.
type TimeEntry struct {
	ID          int64     `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
	Duration    *float64  `json:"duration"`    // hours, nil until costed
	ActivityID  *int64    `json:"activity_id"` // nil when not billed against an activity
}

// Hours returns the costed duration, treating an absent duration as zero.
func (t TimeEntry) Hours() float64 {
	if t.Duration == nil {
		return 0
	}
	return *t.Duration
}

// Activity is an invoice line that time entries bill against.
type Activity struct {
	Number        int64   `json:"number"`
	InvoiceNumber int64   `json:"invoice_number"`
	Description   string  `json:"description"`
	UnitPrice     float64 `json:"unit_price"`
}

// Invoice is the header row of an invoice.
type Invoice struct {
	Number      int64  `json:"number"`
	Month       Month  `json:"month"`
	Created     *Date  `json:"created"`
	RecipientID string `json:"recipient_id"`
}

// Recipient is the party an invoice is addressed to.
type Recipient struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// InvoiceRecipient is one row of the invoice ⨝ recipient flat load.
type InvoiceRecipient struct {
	Invoice   Invoice
	Recipient Recipient
}
