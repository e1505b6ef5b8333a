package aggregate

import (
	"errors"
	"fmt"
)

// Load phases reported by LoadError.
const (
	PhaseFlat        = "flat"
	PhaseBelongingTo = "belonging-to"
)

// LoadError reports a record store failure during aggregation.
type LoadError struct {
	Entity string // table being loaded
	Phase  string // PhaseFlat or PhaseBelongingTo
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s load of %s: %v", e.Phase, e.Entity, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IdentificationError reports that an identifier matched zero or several
// records where exactly one was required.
type IdentificationError struct {
	Entity string
	Ident  string
	Count  int
}

func (e *IdentificationError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("identifier %s failed to uniquely identify an %s: no match", e.Ident, e.Entity)
	}
	return fmt.Sprintf("identifier %s failed to uniquely identify an %s: %d matches", e.Ident, e.Entity, e.Count)
}

// IsLoadError returns true if err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}

// IsIdentificationError returns true if err is or wraps an *IdentificationError.
func IsIdentificationError(err error) bool {
	var target *IdentificationError
	return errors.As(err, &target)
}

// ExactlyOne returns the single item, or an *IdentificationError when items
// holds zero or more than one element. It never picks one of several.
func ExactlyOne[T any](entity string, ident fmt.Stringer, items []T) (T, error) {
	if len(items) != 1 {
		var zero T
		return zero, &IdentificationError{Entity: entity, Ident: ident.String(), Count: len(items)}
	}
	return items[0], nil
}

func flatErr(entity string, err error) error {
	return &LoadError{Entity: entity, Phase: PhaseFlat, Err: err}
}

func belongingErr(entity string, err error) error {
	return &LoadError{Entity: entity, Phase: PhaseBelongingTo, Err: err}
}
