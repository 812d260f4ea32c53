// Package matrix answers capability availability questions for SQL Server
// deployment environments.
//
// A Matrix is built once from compiled capability rows and is immutable
// afterwards; concurrent readers share it without locking. Lookups key on
// the normalized capability name (NFC, case-folded, whitespace-collapsed)
// paired with the environment, so "query  store" and "Query Store" resolve
// to the same row.
//
// Two lookup failures are kept distinct:
//   - UNKNOWN_CAPABILITY: the matrix tracks no row for the name at all
//   - UNKNOWN_ENVIRONMENT: the name is tracked, but not for that environment
//
// The second is a coverage gap in the curated data and worth reporting
// upstream; the first is a caller asking about something out of scope.
package matrix
