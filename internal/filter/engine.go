package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/record"
)

// Engine runs filter queries against tables served by a Fetcher.
// An Engine holds no per-query state and may be reused.
type Engine struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine reading records through fetcher.
func New(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher: fetcher,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a successful filter run.
type Result struct {
	Table      string
	Predicates []query.Predicate

	// Records holds the matches in source order.
	Records []record.Record
}

// Empty reports that no record matched. This is a valid outcome, not an
// error.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Filter parses raw criteria, validates and types them against table, and
// returns the matching records.
//
// overrides maps field names (any case) to a type to use instead of
// inference. Errors are *query.ParseError, *query.SchemaError,
// *query.EmptyTableError, *query.CoercionError, or a wrapped fetch error.
func (e *Engine) Filter(ctx context.Context, table string, raw []string, overrides map[string]query.Type) (*Result, error) {
	criteria, err := query.ParseCriteria(raw)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("table", table).Int("criteria", len(criteria)).Msg("parsed criteria")

	fetcher := newMemoFetcher(e.fetcher)

	records, err := fetcher.FetchRecords(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	if len(records) == 0 {
		return nil, &query.EmptyTableError{Table: table}
	}

	fields := query.Fields(criteria)
	if err := query.ValidateFields(table, records[0], fields); err != nil {
		return nil, err
	}

	types, err := e.resolveTypes(ctx, fetcher, table, fields, overrides)
	if err != nil {
		return nil, err
	}

	preds, err := query.CompileAll(criteria, types)
	if err != nil {
		return nil, err
	}

	records, err = fetcher.FetchRecords(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	matches := query.Apply(records, preds)

	e.log.Debug().
		Str("table", table).
		Int("records", len(records)).
		Int("matches", len(matches)).
		Int("fetches", fetcher.fetches).
		Msg("filter complete")

	return &Result{Table: table, Predicates: preds, Records: matches}, nil
}

// resolveTypes picks a type for each field: the override when one is
// given, otherwise the type inferred from the table's records.
func (e *Engine) resolveTypes(ctx context.Context, fetcher Fetcher, table string, fields []string, overrides map[string]query.Type) (map[string]query.Type, error) {
	normalized := make(map[string]query.Type, len(overrides))
	for f, t := range overrides {
		normalized[strings.ToLower(strings.TrimSpace(f))] = t
	}

	types := make(map[string]query.Type, len(fields))
	for _, field := range fields {
		if t, ok := normalized[field]; ok {
			types[field] = t
			e.log.Debug().Str("field", field).Stringer("type", t).Bool("override", true).Msg("field type")
			continue
		}

		records, err := fetcher.FetchRecords(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", table, err)
		}
		t := query.InferType(records, field)
		types[field] = t
		e.log.Debug().Str("field", field).Stringer("type", t).Bool("override", false).Msg("field type")
	}
	return types, nil
}
