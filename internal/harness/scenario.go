package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/invoicer/internal/testutil"
)

// Scenario defines an aggregation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture holds the rows seeded before the query runs.
	Fixture testutil.Fixture `yaml:"fixture"`

	// Query is the aggregation to run.
	Query Query `yaml:"query"`

	// Assertions validate the aggregation output and load trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Query kinds.
const (
	QueryInvoices   = "invoices"
	QueryActivities = "activities"
	QueryTimes      = "times"
)

// Query selects the aggregation and its filter.
type Query struct {
	// Kind is "invoices", "activities" or "times".
	Kind string `yaml:"kind"`

	// Ident is an invoice number or YYYY-MM month (invoices only).
	// Empty selects every invoice.
	Ident string `yaml:"ident,omitempty"`

	// Unique applies the exactly-one contract to the invoice documents.
	Unique bool `yaml:"unique,omitempty"`

	// Invoice restricts activities to one invoice.
	Invoice *int64 `yaml:"invoice,omitempty"`

	// Month restricts activities (by invoice month) or times (by start).
	Month string `yaml:"month,omitempty"`

	// Unbilled restricts times to entries without an activity.
	Unbilled bool `yaml:"unbilled,omitempty"`

	// FailOn makes the named accessor method fail, e.g. "TimesOf".
	FailOn string `yaml:"fail_on,omitempty"`
}

// Assertion validates the result of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "document_count": number of documents/rollups/times returned
	// - "document_order": invoice or activity numbers in output order
	// - "activity_order": activity numbers of one invoice, in order
	// - "total_duration": hours of an activity, or of an invoice when only invoice is set
	// - "tickets": ticket set of an activity
	// - "error": the aggregation failed with an error of Kind
	// - "load_count": number of store loads, optionally of one phase
	// - "load_order": accessor methods in call order
	Type string `yaml:"type"`

	Count    *int     `yaml:"count,omitempty"`
	Numbers  []int64  `yaml:"numbers,omitempty"`
	Invoice  *int64   `yaml:"invoice,omitempty"`
	Activity *int64   `yaml:"activity,omitempty"`
	Hours    *float64 `yaml:"hours,omitempty"`
	Tickets  []string `yaml:"tickets,omitempty"`

	// Kind is "identification" or "load" (used by error).
	Kind string `yaml:"kind,omitempty"`

	// Contains is a substring of the error message (used by error).
	Contains string `yaml:"contains,omitempty"`

	// Phase restricts load_count to "flat" or "belonging-to".
	Phase string `yaml:"phase,omitempty"`

	// Methods is the expected load order (used by load_order).
	Methods []string `yaml:"methods,omitempty"`
}

// Assertion type constants.
const (
	AssertDocumentCount = "document_count"
	AssertDocumentOrder = "document_order"
	AssertActivityOrder = "activity_order"
	AssertTotalDuration = "total_duration"
	AssertTickets       = "tickets"
	AssertError         = "error"
	AssertLoadCount     = "load_count"
	AssertLoadOrder     = "load_order"
)

// Error kinds for the error assertion.
const (
	ErrorKindIdentification = "identification"
	ErrorKindLoad           = "load"
)

var accessorMethods = []string{
	"LoadInvoices", "LoadActivities", "LoadTimes",
	"ActivitiesOf", "TimesOf", "TicketTimesOf",
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so a
// typo like "assertion:" fails loudly.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := validateQuery(s.Query); err != nil {
		return err
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateQuery(q Query) error {
	switch q.Kind {
	case QueryInvoices:
		if q.Invoice != nil || q.Month != "" || q.Unbilled {
			return fmt.Errorf("query: invoices take ident, not invoice/month/unbilled")
		}
	case QueryActivities:
		if q.Invoice != nil && q.Month != "" {
			return fmt.Errorf("query: invoice and month are mutually exclusive")
		}
		if q.Ident != "" || q.Unique || q.Unbilled {
			return fmt.Errorf("query: activities take invoice or month")
		}
	case QueryTimes:
		if q.Ident != "" || q.Unique || q.Invoice != nil {
			return fmt.Errorf("query: times take month and unbilled")
		}
	case "":
		return fmt.Errorf("query.kind is required")
	default:
		return fmt.Errorf("query: unknown kind %q", q.Kind)
	}

	if q.FailOn != "" && !slices.Contains(accessorMethods, q.FailOn) {
		return fmt.Errorf("query: fail_on %q is not an accessor method", q.FailOn)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDocumentCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for document_count", index)
		}
	case AssertDocumentOrder:
		if a.Numbers == nil {
			return fmt.Errorf("assertions[%d]: numbers list is required for document_order", index)
		}
	case AssertActivityOrder:
		if a.Invoice == nil {
			return fmt.Errorf("assertions[%d]: invoice is required for activity_order", index)
		}
		if a.Numbers == nil {
			return fmt.Errorf("assertions[%d]: numbers list is required for activity_order", index)
		}
	case AssertTotalDuration:
		if a.Hours == nil {
			return fmt.Errorf("assertions[%d]: hours is required for total_duration", index)
		}
		if (a.Invoice == nil) == (a.Activity == nil) {
			return fmt.Errorf("assertions[%d]: exactly one of invoice or activity is required for total_duration", index)
		}
	case AssertTickets:
		if a.Activity == nil {
			return fmt.Errorf("assertions[%d]: activity is required for tickets", index)
		}
	case AssertError:
		if a.Kind != ErrorKindIdentification && a.Kind != ErrorKindLoad {
			return fmt.Errorf("assertions[%d]: kind must be %q or %q for error", index, ErrorKindIdentification, ErrorKindLoad)
		}
	case AssertLoadCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for load_count", index)
		}
		if a.Phase != "" && a.Phase != "flat" && a.Phase != "belonging-to" {
			return fmt.Errorf("assertions[%d]: unknown phase %q", index, a.Phase)
		}
	case AssertLoadOrder:
		if len(a.Methods) == 0 {
			return fmt.Errorf("assertions[%d]: methods list is required for load_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
