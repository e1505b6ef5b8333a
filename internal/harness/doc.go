// Package harness runs YAML aggregation scenarios end to end.
//
// A scenario seeds a fresh SQLite store from a fixture, runs one
// aggregation query inside a read transaction and checks assertions
// against the assembled documents and the sequence of store loads the
// aggregation performed:
//
//	name: invoice-activity-order
//	description: activities come back ordered by number
//	fixture:
//	  recipients: [{id: acme, name: Acme Ltd, address: "1 Road"}]
//	  invoices: [{number: 1, month: "2024-05", recipient: acme}]
//	  activities:
//	    - {number: 5, invoice: 1, description: Support, unit_price: 80}
//	    - {number: 1, invoice: 1, description: Build, unit_price: 120}
//	query:
//	  kind: invoices
//	  ident: "1"
//	assertions:
//	  - type: activity_order
//	    invoice: 1
//	    numbers: [1, 5]
//
// Every load goes through a recording accessor, so scenarios can pin the
// cost of an aggregation (one flat load plus one belonging-to load per
// level) as well as its result. RunWithGolden snapshots that load trace
// with goldie.
package harness
