// Package library answers the everyday questions asked of the personal
// library: which fields a table has, which records leave a field empty,
// free-text search, and the book↔author and book↔edition walks.
//
// All lookups go through a filter.Fetcher and are simple linear scans.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/filter"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/record"
)

// DefaultSearchField is searched when no field is given.
const DefaultSearchField = "Title"

// VibeFields are the BOOKS fields searched by Vibe.
var VibeFields = []string{"Genre", "Tags"}

// Field names used by the relationship walks.
const (
	fieldID          = "Id"
	fieldName        = "Name"
	fieldTitle       = "Title"
	fieldDisplayName = "Display Name"
	fieldAuthorsLink = "Authors"
)

var (
	// ErrAuthorNotFound is returned when no author has the requested name.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrBookNotFound is returned when no book has the requested title.
	ErrBookNotFound = errors.New("book not found")
)

// Library runs lookups against the configured tables.
type Library struct {
	fetcher   filter.Fetcher
	relations config.Relations
	log       zerolog.Logger
}

// New creates a Library reading through fetcher. relations names the link
// fields between tables.
func New(fetcher filter.Fetcher, relations config.Relations, log zerolog.Logger) *Library {
	return &Library{fetcher: fetcher, relations: relations, log: log}
}

// All returns every record of table.
func (l *Library) All(ctx context.Context, table string) ([]record.Record, error) {
	return l.fetcher.FetchRecords(ctx, table)
}

// Fields returns the field names of table's first record, sorted.
func (l *Library) Fields(ctx context.Context, table string) ([]string, error) {
	recs, err := l.fetcher.FetchRecords(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &query.EmptyTableError{Table: table}
	}
	return recs[0].Keys(), nil
}

// Empty returns the records of table whose field is missing, null, blank,
// zero, false or an empty list/record.
func (l *Library) Empty(ctx context.Context, table, field string) ([]record.Record, error) {
	recs, err := l.fetcher.FetchRecords(ctx, table)
	if err != nil {
		return nil, err
	}
	var out []record.Record
	for _, rec := range recs {
		if !record.Truthy(rec.Get(field)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Search returns the records of table where term is a case-insensitive
// substring of any of fields. List values are joined with ", " before
// matching. Fields missing from a record are skipped. Each record appears
// at most once, in source order.
func (l *Library) Search(ctx context.Context, table, term string, fields ...string) ([]record.Record, error) {
	if len(fields) == 0 {
		fields = []string{DefaultSearchField}
	}
	recs, err := l.fetcher.FetchRecords(ctx, table)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	var out []record.Record
	for _, rec := range recs {
		for _, field := range fields {
			_, v, ok := rec.Lookup(field)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(record.Text(v)), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	l.log.Debug().Str("table", table).Strs("fields", fields).Int("matches", len(out)).Msg("search")
	return out, nil
}

// Vibe searches Genre and Tags of BOOKS.
func (l *Library) Vibe(ctx context.Context, term string) ([]record.Record, error) {
	return l.Search(ctx, config.TableBooks, term, VibeFields...)
}

// AuthorWorks finds the author whose Name equals name (case-insensitive)
// and returns the author with the books linked to them, in source order.
func (l *Library) AuthorWorks(ctx context.Context, name string) (record.Record, []record.Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrAuthorNotFound, name)
	}
	authors, err := l.fetcher.FetchRecords(ctx, config.TableAuthors)
	if err != nil {
		return nil, nil, err
	}

	var author record.Record
	for _, a := range authors {
		if strings.EqualFold(record.Text(a.Get(fieldName)), name) {
			author = a
			break
		}
	}
	authorID := author.Get(fieldID)
	if author == nil || record.IsNull(authorID) {
		return nil, nil, fmt.Errorf("%w: %q", ErrAuthorNotFound, name)
	}

	books, err := l.fetcher.FetchRecords(ctx, config.TableBooks)
	if err != nil {
		return nil, nil, err
	}

	var works []record.Record
	for _, book := range books {
		links, ok := book.Get(l.relations.BookAuthors).(record.List)
		if !ok {
			continue
		}
		for _, link := range links {
			entry, ok := link.(record.Record)
			if !ok {
				continue
			}
			linked, ok := entry.Link(fieldAuthorsLink)
			if ok && record.Equal(linked.Get(fieldID), authorID) {
				works = append(works, book)
				break
			}
		}
	}
	return author, works, nil
}

// BookEditions finds the book whose Title or Display Name equals title
// (case-insensitive) and returns it with its editions, in source order.
func (l *Library) BookEditions(ctx context.Context, title string) (record.Record, []record.Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrBookNotFound, title)
	}
	books, err := l.fetcher.FetchRecords(ctx, config.TableBooks)
	if err != nil {
		return nil, nil, err
	}

	var book record.Record
	for _, b := range books {
		if strings.EqualFold(record.Text(b.Get(fieldTitle)), title) ||
			strings.EqualFold(record.Text(b.Get(fieldDisplayName)), title) {
			book = b
			break
		}
	}
	bookID := book.Get(fieldID)
	if book == nil || record.IsNull(bookID) {
		return nil, nil, fmt.Errorf("%w: %q", ErrBookNotFound, title)
	}

	editions, err := l.fetcher.FetchRecords(ctx, config.TableEditions)
	if err != nil {
		return nil, nil, err
	}

	var out []record.Record
	for _, ed := range editions {
		linked, ok := ed.Link(l.relations.BookLink)
		if ok && record.Equal(linked.Get(fieldID), bookID) {
			out = append(out, ed)
		}
	}
	return book, out, nil
}

// DisplayName returns a book's Display Name, falling back to its Title.
func DisplayName(book record.Record) string {
	if name := record.Text(book.Get(fieldDisplayName)); name != "" {
		return name
	}
	return record.Text(book.Get(fieldTitle))
}
