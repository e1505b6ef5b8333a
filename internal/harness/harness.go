package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/invoicer/internal/aggregate"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/store"
	"github.com/roach88/invoicer/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh SQLite file in a temporary directory,
// removed afterwards. Execution flow:
//  1. Open the store and seed the fixture
//  2. Run the query in one read transaction through a recording accessor
//  3. Evaluate assertions against the output, error and load trace
//
// An error is returned only when the scenario could not be executed;
// failed assertions are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "invoicer-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "scenario.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	if err := testutil.Seed(ctx, st, scenario.Fixture); err != nil {
		return nil, fmt.Errorf("failed to seed fixture: %w", err)
	}

	result := NewResult()
	result.Kind = scenario.Query.Kind
	var rec *recorder
	err = st.Read(ctx, func(r *store.Reader) error {
		rec = newRecorder(r, scenario.Query.FailOn)
		result.Err = execute(ctx, rec, scenario.Query, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	result.Trace = rec.trace

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// execute runs the query and stores its output in result. The returned
// error is the aggregation's own error.
func execute(ctx context.Context, acc aggregate.Accessor, q Query, result *Result) error {
	switch q.Kind {
	case QueryInvoices:
		filter := aggregate.AllInvoices()
		var ident fmt.Stringer = filter
		if q.Ident != "" {
			id, err := parse.Ident(q.Ident)
			if err != nil {
				return err
			}
			filter, ident = id.Filter(), id
		}

		docs, err := aggregate.BuildInvoiceDocuments(ctx, acc, filter)
		if err != nil {
			return err
		}
		if q.Unique {
			if _, err := aggregate.ExactlyOne("invoice", ident, docs); err != nil {
				return err
			}
		}
		result.Invoices = docs

	case QueryActivities:
		filter := aggregate.AllActivities()
		switch {
		case q.Invoice != nil:
			filter = aggregate.ActivitiesOfInvoice(*q.Invoice)
		case q.Month != "":
			m, err := parse.Month(q.Month)
			if err != nil {
				return err
			}
			filter = aggregate.ActivitiesInMonth(m)
		}

		acts, err := aggregate.BuildActivityRollups(ctx, acc, filter)
		if err != nil {
			return err
		}
		result.Activities = acts

	case QueryTimes:
		filter := aggregate.AllTimes()
		if q.Month != "" {
			m, err := parse.Month(q.Month)
			if err != nil {
				return err
			}
			filter = aggregate.TimesInMonth(m)
		}
		if q.Unbilled {
			filter = filter.And(aggregate.UnbilledTimes())
		}

		times, err := aggregate.BuildTimeListing(ctx, acc, filter)
		if err != nil {
			return err
		}
		result.Times = times

	default:
		return fmt.Errorf("unknown query kind %q", q.Kind)
	}
	return nil
}
