// Package aggregate assembles flat invoicing records into nested view models.
//
// Three builders are stacked:
//
//	BuildInvoices    invoice+recipient -> InvoiceDocument
//	BuildActivities  activity          -> ActivityWithRollup
//	BuildTimes       time entry        -> TimeWithTickets
//
// Each level performs exactly one belonging-to load through the Accessor and
// correlates children to parents with GroupByParent, so a full invoice
// aggregation costs one flat load plus three belonging-to loads regardless
// of how many rows are involved.
//
// Builders never filter or fail on their own. A load failure at any level
// aborts the whole aggregation with a *LoadError and no partial result.
// Callers that need exactly one invoice apply ExactlyOne, which reports any
// other count as an *IdentificationError.
//
// The package does not open transactions. Callers hand in an Accessor bound
// to one read transaction (see store.Store.Read) and must not use it after
// the call returns.
package aggregate
