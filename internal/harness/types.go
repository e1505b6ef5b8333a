package harness

import "github.com/roach88/invoicer/internal/model"

// TraceEvent is one record store load performed during a scenario.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Method string `json:"method"`
	Phase  string `json:"phase"`           // "flat" or "belonging-to"
	Batch  int    `json:"batch,omitempty"` // parent count for belonging-to loads
	Rows   int    `json:"rows"`
	Failed bool   `json:"failed,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Kind is the query kind that produced the output.
	Kind string `json:"kind"`

	// Exactly one of the output slices is set, matching the query kind.
	Invoices   []model.InvoiceDocument    `json:"invoices,omitempty"`
	Activities []model.ActivityWithRollup `json:"activities,omitempty"`
	Times      []model.TimeWithTickets    `json:"times,omitempty"`

	// Err is the error the aggregation returned, if any.
	Err error `json:"-"`

	// Trace lists the store loads in call order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// invoice returns the document numbered n.
func (r *Result) invoice(n int64) (model.InvoiceDocument, bool) {
	for _, d := range r.Invoices {
		if d.Number == n {
			return d, true
		}
	}
	return model.InvoiceDocument{}, false
}

// activity finds activity n in the activity output or in any document.
func (r *Result) activity(n int64) (model.ActivityWithRollup, bool) {
	for _, a := range r.Activities {
		if a.Number == n {
			return a, true
		}
	}
	for _, d := range r.Invoices {
		for _, a := range d.Activities {
			if a.Number == n {
				return a, true
			}
		}
	}
	return model.ActivityWithRollup{}, false
}
