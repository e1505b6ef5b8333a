package harness

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/invoicer/internal/aggregate"
)

// durationTolerance absorbs float summation error in hour totals.
const durationTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes the load trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Loads performed, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nLoads:\n")
	for _, ev := range e.Trace {
		status := ""
		if ev.Failed {
			status = " FAILED"
		}
		fmt.Fprintf(&buf, "  [%d] %s (%s) batch=%d rows=%d%s\n", ev.Seq, ev.Method, ev.Phase, ev.Batch, ev.Rows, status)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. Any assertion other than "error" also fails when the
// aggregation itself returned an error.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	if result.Err != nil && a.Type != AssertError && a.Type != AssertLoadCount && a.Type != AssertLoadOrder {
		return fail(result, a.Type, "successful aggregation", result.Err.Error())
	}

	switch a.Type {
	case AssertDocumentCount:
		return assertDocumentCount(result, a)
	case AssertDocumentOrder:
		return assertDocumentOrder(result, a)
	case AssertActivityOrder:
		return assertActivityOrder(result, a)
	case AssertTotalDuration:
		return assertTotalDuration(result, a)
	case AssertTickets:
		return assertTickets(result, a)
	case AssertError:
		return assertError(result, a)
	case AssertLoadCount:
		return assertLoadCount(result, a)
	case AssertLoadOrder:
		return assertLoadOrder(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func fail(result *Result, typ, expected, actual string) error {
	return &AssertionError{Type: typ, Expected: expected, Actual: actual, Trace: result.Trace}
}

// outputNumbers lists invoice numbers, activity numbers or time ids in
// output order, depending on the query kind.
func outputNumbers(result *Result) []int64 {
	var nums []int64
	switch result.Kind {
	case QueryInvoices:
		for _, d := range result.Invoices {
			nums = append(nums, d.Number)
		}
	case QueryActivities:
		for _, a := range result.Activities {
			nums = append(nums, a.Number)
		}
	case QueryTimes:
		for _, t := range result.Times {
			nums = append(nums, t.ID)
		}
	}
	return nums
}

func assertDocumentCount(result *Result, a Assertion) error {
	got := len(outputNumbers(result))
	if got != *a.Count {
		return fail(result, a.Type, fmt.Sprintf("%d %s", *a.Count, result.Kind), fmt.Sprintf("%d %s", got, result.Kind))
	}
	return nil
}

func assertDocumentOrder(result *Result, a Assertion) error {
	got := outputNumbers(result)
	if !slices.Equal(got, a.Numbers) {
		return fail(result, a.Type, fmt.Sprint(a.Numbers), fmt.Sprint(got))
	}
	return nil
}

func assertActivityOrder(result *Result, a Assertion) error {
	doc, ok := result.invoice(*a.Invoice)
	if !ok {
		return fail(result, a.Type, fmt.Sprintf("invoice %d in output", *a.Invoice), "not found")
	}

	got := make([]int64, len(doc.Activities))
	for i, act := range doc.Activities {
		got[i] = act.Number
	}
	if !slices.Equal(got, a.Numbers) {
		return fail(result, a.Type, fmt.Sprint(a.Numbers), fmt.Sprint(got))
	}
	return nil
}

func assertTotalDuration(result *Result, a Assertion) error {
	var got float64
	if a.Activity != nil {
		act, ok := result.activity(*a.Activity)
		if !ok {
			return fail(result, a.Type, fmt.Sprintf("activity %d in output", *a.Activity), "not found")
		}
		got = act.TotalDuration
	} else {
		doc, ok := result.invoice(*a.Invoice)
		if !ok {
			return fail(result, a.Type, fmt.Sprintf("invoice %d in output", *a.Invoice), "not found")
		}
		got = doc.TotalDuration()
	}

	if math.Abs(got-*a.Hours) > durationTolerance {
		return fail(result, a.Type, fmt.Sprintf("%g hours", *a.Hours), fmt.Sprintf("%g hours", got))
	}
	return nil
}

func assertTickets(result *Result, a Assertion) error {
	act, ok := result.activity(*a.Activity)
	if !ok {
		return fail(result, a.Type, fmt.Sprintf("activity %d in output", *a.Activity), "not found")
	}

	got := act.Tickets.Strings()
	want := a.Tickets
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return fail(result, a.Type, fmt.Sprint(want), fmt.Sprint(got))
	}
	return nil
}

func assertError(result *Result, a Assertion) error {
	if result.Err == nil {
		return fail(result, a.Type, a.Kind+" error", "no error")
	}

	switch a.Kind {
	case ErrorKindIdentification:
		var idErr *aggregate.IdentificationError
		if !errors.As(result.Err, &idErr) {
			return fail(result, a.Type, "identification error", result.Err.Error())
		}
		if a.Count != nil && idErr.Count != *a.Count {
			return fail(result, a.Type, fmt.Sprintf("%d matches", *a.Count), fmt.Sprintf("%d matches", idErr.Count))
		}
	case ErrorKindLoad:
		var loadErr *aggregate.LoadError
		if !errors.As(result.Err, &loadErr) {
			return fail(result, a.Type, "load error", result.Err.Error())
		}
		if a.Phase != "" && loadErr.Phase != a.Phase {
			return fail(result, a.Type, "phase "+a.Phase, "phase "+loadErr.Phase)
		}
	}

	if a.Contains != "" && !strings.Contains(result.Err.Error(), a.Contains) {
		return fail(result, a.Type, fmt.Sprintf("message containing %q", a.Contains), result.Err.Error())
	}
	return nil
}

func assertLoadCount(result *Result, a Assertion) error {
	got := 0
	for _, ev := range result.Trace {
		if a.Phase == "" || ev.Phase == a.Phase {
			got++
		}
	}
	if got != *a.Count {
		what := "loads"
		if a.Phase != "" {
			what = a.Phase + " loads"
		}
		return fail(result, a.Type, fmt.Sprintf("%d %s", *a.Count, what), fmt.Sprintf("%d %s", got, what))
	}
	return nil
}

func assertLoadOrder(result *Result, a Assertion) error {
	got := make([]string, len(result.Trace))
	for i, ev := range result.Trace {
		got[i] = ev.Method
	}
	if !slices.Equal(got, a.Methods) {
		return fail(result, a.Type, strings.Join(a.Methods, " -> "), strings.Join(got, " -> "))
	}
	return nil
}
