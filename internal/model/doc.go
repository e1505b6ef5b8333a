// Package model provides the record snapshots and view models for invoicer.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal. This keeps the data model
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Records are immutable snapshots of loaded rows, never written back
//   - Optional columns are pointers (nil = absent), never sentinel values
//   - Ticket identity is (project key, number) and tickets order by that pair
//   - All JSON tags use snake_case
package model
