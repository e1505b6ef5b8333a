// Package render turns assembled view models into output documents: the
// timesheet CSV, the invoice PDF and the text tables printed by list
// commands. Renderers are pure apart from writing to the given io.Writer.
package render
