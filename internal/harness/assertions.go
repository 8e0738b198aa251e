package harness

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/shelf/internal/record"
)

// Evaluate checks one step's trace event against its expectations and
// returns a message per failed check. An unexpected error suppresses the
// remaining checks since there is nothing left to compare.
func Evaluate(expect Expect, event TraceEvent) []string {
	var failures []string

	switch {
	case expect.Error != "" && event.Error == "":
		failures = append(failures, fmt.Sprintf("expected %s error, got %d match(es)", expect.Error, len(event.Matches)))
	case expect.Error != "" && event.Error != expect.Error:
		failures = append(failures, fmt.Sprintf("expected %s error, got %s error: %s", expect.Error, event.Error, event.Message))
	case expect.Error == "" && event.Error != "":
		return append(failures, fmt.Sprintf("unexpected %s error: %s", event.Error, event.Message))
	}

	if expect.Count != nil && len(event.Matches) != *expect.Count {
		failures = append(failures, fmt.Sprintf("expected %d match(es), got %d", *expect.Count, len(event.Matches)))
	}

	if len(expect.Match) > 0 {
		failures = append(failures, checkMatches(expect.Match, event.Matches)...)
	}

	for _, field := range slices.Sorted(maps.Keys(expect.Types)) {
		want := expect.Types[field]
		got, ok := event.Types[field]
		if !ok {
			failures = append(failures, fmt.Sprintf("types: field %q was not compared", field))
			continue
		}
		if got != want {
			failures = append(failures, fmt.Sprintf("types: field %q compared as %s, want %s", field, got, want))
		}
	}

	if expect.Fetches != nil && event.Fetches != *expect.Fetches {
		failures = append(failures, fmt.Sprintf("expected %d fetch(es), got %d", *expect.Fetches, event.Fetches))
	}

	return failures
}

// checkMatches compares the matches in order, each against a subset of
// expected fields.
func checkMatches(want []map[string]any, got []record.Record) []string {
	if len(want) != len(got) {
		return []string{fmt.Sprintf("expected %d matching record(s), got %d", len(want), len(got))}
	}

	var failures []string
	for i := range want {
		if msg, ok := MatchSubset(got[i], want[i]); !ok {
			failures = append(failures, fmt.Sprintf("match[%d]: %s", i, msg))
		}
	}
	return failures
}

// MatchSubset reports whether every field in want is present in rec with an
// equal value. Field names are matched case-insensitively. On mismatch it
// returns a description of the first differing field, in key order.
func MatchSubset(rec record.Record, want map[string]any) (string, bool) {
	for _, field := range slices.Sorted(maps.Keys(want)) {
		_, got, ok := rec.Lookup(field)
		if !ok {
			return fmt.Sprintf("field %q missing", field), false
		}

		expected, err := record.FromAny(want[field])
		if err != nil {
			return fmt.Sprintf("field %q: %v", field, err), false
		}

		if !record.Equal(got, expected) {
			return fmt.Sprintf("field %q: want %s, got %s", field, record.Text(expected), record.Text(got)), false
		}
	}
	return "", true
}
