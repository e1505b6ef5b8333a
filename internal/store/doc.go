// Package store provides SQLite-backed storage for projects, tickets,
// recipients, invoices, activities and time entries.
//
// It is the record store behind the aggregation core:
//   - Reader performs flat loads (filtered by a queryir.Predicate) and
//     belonging-to loads (children whose foreign key matches a parent batch)
//   - Writer performs the inserts and updates used by log, amend and add
//
// Both run inside a single transaction handed to a callback by Store.Read or
// Store.Update, so a multi-level aggregation sees one consistent snapshot.
//
// # Deterministic Query Results
//
// Every load is built as a queryir query, validated against queryir.Catalog
// and compiled by querysql, which always appends the table's stable ORDER BY
// key. The same database therefore yields the same rows in the same order.
//
// # Storage Format
//
// Dates are stored as "YYYY-MM-DD" and timestamps as "YYYY-MM-DD HH:MM:SS"
// text. Columns are declared DATE and TIMESTAMP so the driver scans them back
// into time.Time values.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The schema is managed by goose migrations embedded from migrations/.
package store
