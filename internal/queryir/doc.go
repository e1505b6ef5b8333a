// Package queryir provides the filter intermediate representation used by
// every load the record store performs.
//
// Callers never hand SQL to the store. They describe a load as a Select (one
// table) or a Join (two tables on a foreign key) with an optional Predicate,
// and the querysql package compiles it for SQLite:
//
//	[aggregate filters] → [Query IR] → [querysql] → SQLite
//
// # Sealed Interfaces
//
// Query, Predicate and Value are sealed with marker methods. Only types in
// this package implement them, which keeps the compiler's type switches
// exhaustive.
//
// # Predicates
//
//   - Equals: column = value
//   - In: column IN (values...), the shape of every belonging-to load
//   - Range: from <= column < to, used for month windows over timestamps
//   - IsNull: column IS NULL
//   - And: conjunction (empty = always true)
//
// # Catalog
//
// Catalog describes the persisted tables: their columns, the kind of each
// column and the stable ordering key. Validate checks a query against it so
// a typo in a column name fails before any SQL is built.
package queryir
