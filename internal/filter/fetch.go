package filter

import (
	"context"

	"github.com/roach88/shelf/internal/record"
)

// Fetcher returns every record of a table, in source order.
// Implementations report transport failures as errors; the engine never
// retries.
type Fetcher interface {
	FetchRecords(ctx context.Context, table string) ([]record.Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, table string) ([]record.Record, error)

// FetchRecords calls f(ctx, table).
func (f FetcherFunc) FetchRecords(ctx context.Context, table string) ([]record.Record, error) {
	return f(ctx, table)
}

// memoFetcher caches one successful fetch per table for the lifetime of a
// single Filter call.
type memoFetcher struct {
	next    Fetcher
	records map[string][]record.Record
	fetches int
}

func newMemoFetcher(next Fetcher) *memoFetcher {
	return &memoFetcher{next: next, records: make(map[string][]record.Record)}
}

func (m *memoFetcher) FetchRecords(ctx context.Context, table string) ([]record.Record, error) {
	if recs, ok := m.records[table]; ok {
		return recs, nil
	}
	recs, err := m.next.FetchRecords(ctx, table)
	if err != nil {
		return nil, err
	}
	m.fetches++
	m.records[table] = recs
	return recs, nil
}
