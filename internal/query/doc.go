// Package query implements the filter language used by `shelf filter`.
//
// A filter is a list of criterion strings:
//
//	[AND:|OR:|NOT:]field=value[,value...]
//
// The pipeline is:
//
//	[raw strings] → ParseCriteria → ValidateFields → InferType → Compile → Match
//
// ParseCriteria turns raw strings into Criterion values (field and values
// lower-cased, at most one prefix recognized). ValidateFields checks field
// names against a sample record. InferType classifies a field by scanning
// live records; integers only observed as 0/1 are treated as booleans.
// Compile coerces each criterion value into the field's type, producing a
// Predicate. Match evaluates predicates against a record.
//
// Semantics:
//   - Criteria combine with AND: a record must satisfy every predicate.
//   - A criterion's own values combine with its Logic (AND or OR), then
//     Negate flips the result.
//   - A predicate whose field is missing from a record never matches,
//     negated or not.
//   - Matching is substring-based, except that comma-joined string fields
//     require an exact match against one of the parts. There are no range
//     comparisons.
//
// All functions here are pure. Fetching records is the caller's job (see
// package filter).
package query
