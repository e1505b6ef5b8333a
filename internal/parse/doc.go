// Package parse turns command-line tokens into typed values: document
// identifiers, dates, months, time ranges and amend tokens.
package parse
