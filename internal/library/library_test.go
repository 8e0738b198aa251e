package library

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/record"
	"github.com/roach88/shelf/internal/testutil"
)

const authorsField = "nc_7ok3___nc_m2m_Books_Authors"

func authorLink(id int) map[string]any {
	return map[string]any{"Authors": map[string]any{"Id": id}}
}

func fixture() *testutil.FakeFetcher {
	return testutil.NewFakeFetcher().
		WithTable(config.TableAuthors,
			map[string]any{"Id": 1, "Name": "Octavia E. Butler"},
			map[string]any{"Id": 2, "Name": "N. K. Jemisin"},
			map[string]any{"Id": 3, "Name": "Unpublished Friend"},
		).
		WithTable(config.TableBooks,
			map[string]any{"Id": 10, "Title": "Kindred", "Display Name": "Kindred (1979)", "Genre": "Science Fiction,Historical", "Tags": "time travel", "Notes": "", authorsField: []any{authorLink(1)}},
			map[string]any{"Id": 11, "Title": "The Fifth Season", "Genre": "Fantasy", "Tags": []any{"geology", "found family"}, "Notes": "Reread", authorsField: []any{authorLink(2)}},
			map[string]any{"Id": 12, "Title": "Parable of the Sower", "Genre": "Dystopia", "Owned": 0, authorsField: []any{authorLink(2), authorLink(1)}},
			map[string]any{"Id": 13, "Title": "Anthology", "Genre": "Short Stories"},
		).
		WithTable(config.TableEditions,
			map[string]any{"Title": "Beacon Press 1988", "Books": map[string]any{"Id": 10, "Display Name": "Kindred (1979)"}},
			map[string]any{"Title": "Orbit 2015", "Books": map[string]any{"Id": 11}},
			map[string]any{"Title": "Headline 2018", "Books": map[string]any{"Id": 10}},
			map[string]any{"Title": "Loose leaf"},
		).
		WithTable(config.TableReviews)
}

func newLibrary(f *testutil.FakeFetcher) *Library {
	return New(f, config.Default().Relations, zerolog.Nop())
}

func titlesOf(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = record.Text(r.Get("Title"))
	}
	return out
}

func TestFields(t *testing.T) {
	fields, err := newLibrary(fixture()).Fields(context.Background(), config.TableAuthors)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Name"}, fields)
}

func TestFieldsEmptyTable(t *testing.T) {
	_, err := newLibrary(fixture()).Fields(context.Background(), config.TableReviews)
	require.Error(t, err)
	assert.True(t, query.IsEmptyTableError(err))
}

func TestAll(t *testing.T) {
	recs, err := newLibrary(fixture()).All(context.Background(), config.TableEditions)
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestEmpty(t *testing.T) {
	lib := newLibrary(fixture())

	recs, err := lib.Empty(context.Background(), config.TableBooks, "notes")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kindred", "Parable of the Sower", "Anthology"}, titlesOf(recs))

	recs, err = lib.Empty(context.Background(), config.TableBooks, "Owned")
	require.NoError(t, err)
	assert.Len(t, recs, 4, "0 and missing both count as empty")
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		fields   []string
		expected []string
	}{
		{"default field is Title", "the", nil, []string{"The Fifth Season", "Parable of the Sower"}},
		{"case-insensitive", "KINDRED", nil, []string{"Kindred"}},
		{"field name case-insensitive", "fantasy", []string{"genre"}, []string{"The Fifth Season"}},
		{"list joined before matching", "family", []string{"Tags"}, []string{"The Fifth Season"}},
		{"any of several fields once", "fiction", []string{"Genre", "Title"}, []string{"Kindred"}},
		{"missing field skipped", "x", []string{"Nope"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := newLibrary(fixture()).Search(context.Background(), config.TableBooks, tt.term, tt.fields...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, titlesOf(recs))
		})
	}
}

func TestVibe(t *testing.T) {
	recs, err := newLibrary(fixture()).Vibe(context.Background(), "time")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kindred"}, titlesOf(recs))

	recs, err = newLibrary(fixture()).Vibe(context.Background(), "geo")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Fifth Season"}, titlesOf(recs))
}

func TestAuthorWorks(t *testing.T) {
	author, works, err := newLibrary(fixture()).AuthorWorks(context.Background(), "octavia e. butler")
	require.NoError(t, err)
	assert.Equal(t, record.String("Octavia E. Butler"), author["Name"])
	assert.Equal(t, []string{"Kindred", "Parable of the Sower"}, titlesOf(works))
}

func TestAuthorWorksNoBooks(t *testing.T) {
	author, works, err := newLibrary(fixture()).AuthorWorks(context.Background(), "Unpublished Friend")
	require.NoError(t, err)
	assert.NotNil(t, author)
	assert.Empty(t, works)
}

func TestAuthorWorksNotFound(t *testing.T) {
	f := fixture()
	_, _, err := newLibrary(f).AuthorWorks(context.Background(), "Ursula K. Le Guin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
	assert.Equal(t, 0, f.Calls(config.TableBooks), "books are not fetched when the author is unknown")

	_, _, err = newLibrary(f).AuthorWorks(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestBookEditions(t *testing.T) {
	book, editions, err := newLibrary(fixture()).BookEditions(context.Background(), "kindred")
	require.NoError(t, err)
	assert.Equal(t, "Kindred (1979)", DisplayName(book))
	assert.Equal(t, []string{"Beacon Press 1988", "Headline 2018"}, titlesOf(editions))
}

func TestBookEditionsByDisplayName(t *testing.T) {
	book, _, err := newLibrary(fixture()).BookEditions(context.Background(), "KINDRED (1979)")
	require.NoError(t, err)
	assert.Equal(t, record.Int(10), book["Id"])
}

func TestBookEditionsNotFound(t *testing.T) {
	_, _, err := newLibrary(fixture()).BookEditions(context.Background(), "Dhalgren")
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, _, err = newLibrary(fixture()).BookEditions(context.Background(), "")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDisplayNameFallsBackToTitle(t *testing.T) {
	assert.Equal(t, "Anthology", DisplayName(record.Record{"Title": record.String("Anthology")}))
}

func TestFetchErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	f := fixture().WithError(config.TableEditions, boom)

	_, _, err := newLibrary(f).BookEditions(context.Background(), "Kindred")
	assert.ErrorIs(t, err, boom)
}
