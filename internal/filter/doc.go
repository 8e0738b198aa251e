// Package filter runs a complete filter query against a table.
//
// Engine.Filter executes, in strict order:
//
//  1. Parse the raw criteria (query.ParseCriteria).
//  2. Validate field names against the table's first record.
//  3. For each distinct field, take the caller's type override or infer the
//     type from the table's records, then coerce every value for that field.
//  4. Evaluate the compiled predicates against every record.
//
// Any error aborts the run; no partial results are returned. An empty
// match set is not an error: Result.Empty reports it.
//
// Records come from a Fetcher. Within one Filter call each table is fetched
// at most once; nothing is cached across calls.
package filter
