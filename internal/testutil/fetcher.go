// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/shelf/internal/record"
)

// FakeFetcher serves fixed records per table and counts fetches.
//
// Table names are matched case-insensitively. Unknown tables return an
// error, as does any table listed in Errors.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeFetcher struct {
	mu     sync.Mutex
	tables map[string][]record.Record
	errs   map[string]error
	calls  map[string]int
}

// NewFakeFetcher creates a fetcher with no tables.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		tables: make(map[string][]record.Record),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// WithTable registers rows for table. Rows are plain Go literals converted
// with record.MustFromMap. Returns f for chaining.
func (f *FakeFetcher) WithTable(table string, rows ...map[string]any) *FakeFetcher {
	recs := make([]record.Record, len(rows))
	for i, row := range rows {
		recs[i] = record.MustFromMap(row)
	}
	return f.WithRecords(table, recs...)
}

// WithRecords registers already-built records for table. Returns f for
// chaining.
func (f *FakeFetcher) WithRecords(table string, recs ...record.Record) *FakeFetcher {
	if recs == nil {
		recs = []record.Record{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[strings.ToUpper(table)] = recs
	return f
}

// WithError makes every fetch of table fail with err. Returns f for chaining.
func (f *FakeFetcher) WithError(table string, err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[strings.ToUpper(table)] = err
	return f
}

// FetchRecords implements filter.Fetcher.
func (f *FakeFetcher) FetchRecords(_ context.Context, table string) ([]record.Record, error) {
	key := strings.ToUpper(table)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++

	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	recs, ok := f.tables[key]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return recs, nil
}

// Calls returns how many times table was fetched.
func (f *FakeFetcher) Calls(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[strings.ToUpper(table)]
}

// Reset clears the call counters.
func (f *FakeFetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
}
