// Package record provides the loosely-typed row model returned by the
// library REST API.
//
// Every field value is one of a closed set of variants:
//
//	Null    absent or JSON null
//	String  text
//	Int     whole number (int64)
//	Float   fractional number (float64)
//	Bool    true/false
//	List    ordered sequence of values
//	Record  nested record (e.g. a link to another table)
//
// Value is a sealed interface, so callers can switch exhaustively over the
// variants. record imports nothing internal; the query, filter, library and
// format packages all build on it.
//
// Field names keep the casing chosen by the data source. Use Record.Lookup
// to resolve a user-supplied name case-insensitively.
package record
