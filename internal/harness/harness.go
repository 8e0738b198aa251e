package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/shelf/internal/filter"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/record"
	"github.com/roach88/shelf/internal/testutil"
)

// Harness runs scenarios. The zero value is not usable; create one with New.
type Harness struct {
	log zerolog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes engine diagnostics to log.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Harness) {
		h.log = log
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a scenario and returns the result.
//
// The scenario's tables are loaded into a fresh fake fetcher. Each step runs
// one filter query with the fetch counters reset, records a trace event and
// checks the step's expectations. A failed expectation marks the result as
// failed; it is not an error. Errors are returned only when the fixture
// tables cannot be built.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	fetcher, err := newFetcher(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	engine := filter.New(fetcher, filter.WithLogger(h.log))
	result := NewResult(scenario.Name)

	for i, step := range scenario.Steps {
		fetcher.Reset()
		event := h.runStep(ctx, engine, fetcher, i+1, step)
		result.Trace = append(result.Trace, event)

		for _, msg := range Evaluate(step.Expect, event) {
			result.AddError(fmt.Sprintf("step %d: %s", event.Step, msg))
		}
	}

	h.log.Debug().
		Str("scenario", scenario.Name).
		Int("steps", len(scenario.Steps)).
		Bool("pass", result.Pass).
		Msg("scenario complete")

	return result, nil
}

func (h *Harness) runStep(ctx context.Context, engine *filter.Engine, fetcher *testutil.FakeFetcher, n int, step Step) TraceEvent {
	event := TraceEvent{
		Step:     n,
		Table:    step.Table,
		Criteria: step.Criteria,
	}

	overrides, err := query.ParseTypes(step.Types)
	if err != nil {
		event.Error = ErrorUsage
		event.Message = err.Error()
		return event
	}

	res, err := engine.Filter(ctx, step.Table, step.Criteria, overrides)
	event.Fetches = fetcher.Calls(step.Table)
	if err != nil {
		event.Error = ErrorKind(err)
		event.Message = err.Error()
		return event
	}

	event.Types = make(map[string]string, len(res.Predicates))
	for _, p := range res.Predicates {
		event.Types[p.Field] = p.Type.String()
	}
	event.Matches = res.Records
	return event
}

// newFetcher loads the scenario's tables and fetch errors.
func newFetcher(scenario *Scenario) (*testutil.FakeFetcher, error) {
	fetcher := testutil.NewFakeFetcher()

	for table, rows := range scenario.Tables {
		recs := make([]record.Record, len(rows))
		for i, row := range rows {
			v, err := record.FromAny(row)
			if err != nil {
				return nil, fmt.Errorf("table %s row %d: %w", table, i, err)
			}
			recs[i] = v.(record.Record)
		}
		fetcher.WithRecords(table, recs...)
	}

	for table, msg := range scenario.FetchErrors {
		fetcher.WithError(table, errors.New(msg))
	}

	return fetcher, nil
}

// ErrorKind classifies an error returned by filter.Engine.Filter. Anything
// that is not a query error came from the fetcher.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case query.IsParseError(err):
		return ErrorParse
	case query.IsSchemaError(err):
		return ErrorSchema
	case query.IsEmptyTableError(err):
		return ErrorEmptyTable
	case query.IsCoercionError(err):
		return ErrorCoercion
	default:
		return ErrorFetch
	}
}
