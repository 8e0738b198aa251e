// Package harness runs filter scenarios against fixture tables.
//
// A scenario pins down the observable behavior of the filter engine without
// a live API: the tables are declared inline, each step runs one filter
// query, and the expectations are checked against what the engine returned.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: owned_books
//	description: "Boolean criteria match 0/1 integer fields"
//	tables:
//	  BOOKS:
//	    - { Title: Kindred, Genre: Fantasy, Owned: 1 }
//	    - { Title: Dawn, Genre: Horror, Owned: 0 }
//	fetch_errors:
//	  AUTHORS: "connection refused"
//	steps:
//	  - table: books
//	    criteria: ["Genre=fantasy", "OR:Owned=true,false"]
//	    types: { Owned: boolean }
//	    expect:
//	      count: 1
//	      match:
//	        - { Title: Kindred }
//	      types: { genre: string, owned: boolean }
//	      fetches: 1
//	  - table: books
//	    criteria: ["Genre"]
//	    expect:
//	      error: parse
//
// # Expectations
//
//   - error: the kind of failure (parse, schema, empty_table, coercion,
//     fetch). Without it the step must succeed.
//   - count: the number of matching records.
//   - match: the matching records in order; each entry is a subset of the
//     record's fields.
//   - types: the type each field was compared as, keyed by the lower-cased
//     field name.
//   - fetches: how many times the table was fetched during the step.
//
// Scenarios use the same fetcher double as the unit tests, so every step is
// deterministic and the trace can be compared against a golden file with
// RunWithGolden.
package harness
