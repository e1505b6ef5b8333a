package queryir

import (
	"time"

	"github.com/roach88/invoicer/internal/model"
)

// Query is a load description. Implemented by Select and Join.
type Query interface {
	queryNode()
}

// Predicate is a row filter. Implemented by Equals, In, Range, IsNull and And.
type Predicate interface {
	predicateNode()
}

// Value is a literal compared against a column.
// Implemented by String, Int, Float, Date, Month and Timestamp.
type Value interface {
	valueNode()
	kind() Kind
}

// Select loads rows of one table.
//
//	SELECT <catalog columns> FROM <From> WHERE <Filter> ORDER BY <stable key>
type Select struct {
	From   string    // Table name from Catalog
	Filter Predicate // nil = every row
}

func (Select) queryNode() {}

// Join loads rows of two tables matched on a foreign key.
//
//	SELECT <left cols>, <right cols>
//	FROM <left> INNER JOIN <right> ON left.<LeftField> = right.<RightField>
//	WHERE <left filter> AND <right filter>
//	ORDER BY <left stable key>
//
// Only inner joins are supported; a left row without a match is dropped.
type Join struct {
	Left       Select
	Right      Select
	LeftField  string
	RightField string
}

func (Join) queryNode() {}

// Equals matches rows whose column equals a literal.
type Equals struct {
	Field string
	Value Value
}

func (Equals) predicateNode() {}

// In matches rows whose column equals any of the values.
// An empty Values list matches nothing.
type In struct {
	Field  string
	Values []Value
}

func (In) predicateNode() {}

// Range matches rows with From <= column < To.
type Range struct {
	Field string
	From  Value
	To    Value
}

func (Range) predicateNode() {}

// IsNull matches rows whose column is NULL.
type IsNull struct {
	Field string
}

func (IsNull) predicateNode() {}

// And matches rows that satisfy every predicate. Empty = always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// String is a TEXT literal.
type String string

// Int is an INTEGER literal.
type Int int64

// Float is a REAL literal.
type Float float64

// Date is a DATE literal.
type Date model.Date

// Month is a DATE literal for the first day of the month.
type Month model.Month

// Timestamp is a TIMESTAMP literal.
type Timestamp time.Time

func (String) valueNode()    {}
func (Int) valueNode()       {}
func (Float) valueNode()     {}
func (Date) valueNode()      {}
func (Month) valueNode()     {}
func (Timestamp) valueNode() {}

func (String) kind() Kind    { return KindText }
func (Int) kind() Kind       { return KindInteger }
func (Float) kind() Kind     { return KindReal }
func (Date) kind() Kind      { return KindDate }
func (Month) kind() Kind     { return KindDate }
func (Timestamp) kind() Kind { return KindTimestamp }

// Ints converts integer keys to Values, for In predicates.
func Ints(keys []int64) []Value {
	vals := make([]Value, len(keys))
	for i, k := range keys {
		vals[i] = Int(k)
	}
	return vals
}

// Strings converts text keys to Values, for In predicates.
func Strings(keys []string) []Value {
	vals := make([]Value, len(keys))
	for i, k := range keys {
		vals[i] = String(k)
	}
	return vals
}
