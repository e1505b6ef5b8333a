package queryir

import (
	"errors"
	"fmt"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each catalog violation in traversal order.
	Problems []string
}

// Err returns nil for a valid query, otherwise one error joining every problem.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Problems))
	for i, p := range r.Problems {
		errs[i] = errors.New(p)
	}
	return errors.Join(errs...)
}

// Validate checks a query against the Catalog:
//  1. Every table exists
//  2. Every referenced column exists on the table it is evaluated against
//  3. Every literal has the kind of the column it is compared with
//  4. Range bounds are both present
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Join:
		v.validateJoin(query)
	case *Join:
		v.validateJoin(*query)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	table, ok := Lookup(sel.From)
	if !ok {
		v.addProblem("unknown table %q", sel.From)
		return
	}
	v.validatePredicate(table, sel.Filter)
}

func (v *validator) validateJoin(join Join) {
	v.validateSelect(join.Left)
	v.validateSelect(join.Right)

	left, lok := Lookup(join.Left.From)
	right, rok := Lookup(join.Right.From)
	if !lok || !rok {
		return
	}

	lc, lok := left.Column(join.LeftField)
	if !lok {
		v.addProblem("unknown join column %s.%s", left.Name, join.LeftField)
	}
	rc, rok := right.Column(join.RightField)
	if !rok {
		v.addProblem("unknown join column %s.%s", right.Name, join.RightField)
	}
	if lok && rok && lc.Kind != rc.Kind {
		v.addProblem("join columns %s.%s (%s) and %s.%s (%s) differ in kind",
			left.Name, lc.Name, lc.Kind, right.Name, rc.Name, rc.Kind)
	}
}

func (v *validator) validatePredicate(table Table, p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Equals:
		v.validateComparison(table, pred.Field, pred.Value)
	case *Equals:
		v.validateComparison(table, pred.Field, pred.Value)
	case In:
		v.validateIn(table, pred)
	case *In:
		v.validateIn(table, *pred)
	case Range:
		v.validateRange(table, pred)
	case *Range:
		v.validateRange(table, *pred)
	case IsNull:
		v.validateColumn(table, pred.Field)
	case *IsNull:
		v.validateColumn(table, pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(table, sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(table, sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) validateColumn(table Table, field string) (Column, bool) {
	col, ok := table.Column(field)
	if !ok {
		v.addProblem("unknown column %s.%s", table.Name, field)
	}
	return col, ok
}

func (v *validator) validateComparison(table Table, field string, val Value) {
	col, ok := v.validateColumn(table, field)
	if !ok {
		return
	}
	if val == nil {
		v.addProblem("nil value compared with %s.%s (use IsNull)", table.Name, field)
		return
	}
	if val.kind() != col.Kind {
		v.addProblem("%s value compared with %s column %s.%s", val.kind(), col.Kind, table.Name, field)
	}
}

func (v *validator) validateIn(table Table, in In) {
	if _, ok := v.validateColumn(table, in.Field); !ok {
		return
	}
	for _, val := range in.Values {
		v.validateComparison(table, in.Field, val)
	}
}

func (v *validator) validateRange(table Table, r Range) {
	if r.From == nil || r.To == nil {
		v.addProblem("range over %s.%s needs both bounds", table.Name, r.Field)
		return
	}
	v.validateComparison(table, r.Field, r.From)
	v.validateComparison(table, r.Field, r.To)
}
