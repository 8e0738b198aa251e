package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/shelf/internal/record"
)

// TraceEvent records what one step did.
type TraceEvent struct {
	Step     int
	Table    string
	Criteria []string

	// Types maps each lower-cased field to the type it was compared as.
	Types map[string]string

	// Fetches counts how often the step's table was fetched.
	Fetches int

	Matches []record.Record

	// Error is the failure kind, empty on success. Message is the error text.
	Error   string
	Message string
}

// Result is the outcome of a scenario execution.
type Result struct {
	Name string

	// Pass is true if every expectation held.
	Pass bool

	// Trace holds one event per step, in order.
	Trace []TraceEvent

	// Errors contains the failed expectations. Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Render returns the trace as stable, line-oriented text for golden file
// comparison.
func (r *Result) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Name)
	for _, ev := range r.Trace {
		fmt.Fprintf(&b, "step %d: %s [%s]\n", ev.Step, ev.Table, strings.Join(ev.Criteria, ", "))
		if len(ev.Types) > 0 {
			fields := slices.Sorted(maps.Keys(ev.Types))
			parts := make([]string, len(fields))
			for i, f := range fields {
				parts[i] = f + "=" + ev.Types[f]
			}
			fmt.Fprintf(&b, "  types: %s\n", strings.Join(parts, " "))
		}
		fmt.Fprintf(&b, "  fetches: %d\n", ev.Fetches)
		if ev.Error != "" {
			fmt.Fprintf(&b, "  error: %s: %s\n", ev.Error, ev.Message)
			continue
		}
		fmt.Fprintf(&b, "  matches: %d\n", len(ev.Matches))
		for _, rec := range ev.Matches {
			fmt.Fprintf(&b, "    %s\n", renderRecord(rec))
		}
	}
	return b.String()
}

// renderRecord prints a record as {Key: value, ...} in key order.
func renderRecord(rec record.Record) string {
	keys := rec.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + record.Text(rec[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
