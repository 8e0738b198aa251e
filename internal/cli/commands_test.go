package cli

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelf/internal/client"
	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/format"
	"github.com/roach88/shelf/internal/testutil"
)

const authorsRelation = "nc_7ok3___nc_m2m_Books_Authors"

func libraryFetcher() *testutil.FakeFetcher {
	return testutil.NewFakeFetcher().
		WithTable(config.TableBooks,
			map[string]any{
				"Id": 1, "Title": "The Fifth Season", "Display Name": "The Fifth Season (2015)",
				"First Published": 2015, "Author(s)": []any{"N. K. Jemisin"},
				"Genre": "Fantasy", "Tags": "geology,found family", "Status": "Read",
				"Rating": 5, "Owned": 1, "Annotated": 0,
				authorsRelation: []any{map[string]any{"Authors": map[string]any{"Id": 2}}},
			},
			map[string]any{
				"Id": 2, "Title": "Mexican Gothic", "Display Name": "Mexican Gothic (2020)",
				"First Published": 2020, "Author(s)": []any{"Silvia Moreno-Garcia"},
				"Genre": "Horror", "Tags": "gothic", "Status": "To Read",
				"Rating": 4, "Owned": 0, "Annotated": 0,
				authorsRelation: []any{map[string]any{"Authors": map[string]any{"Id": 3}}},
			},
		).
		WithTable(config.TableAuthors,
			map[string]any{"Id": 2, "Name": "N. K. Jemisin"},
			map[string]any{"Id": 3, "Name": "Silvia Moreno-Garcia", "Website": "silviamoreno-garcia.com"},
			map[string]any{"Id": 4, "Name": "Nobody Yet"},
		).
		WithTable(config.TableEditions,
			map[string]any{"Title": "Orbit 2015", "Year": 2015, "Books": map[string]any{"Id": 1, "Display Name": "The Fifth Season (2015)"}},
		).
		WithTable(config.TableReviews)
}

// execute runs the root command against f and returns stdout.
func execute(t *testing.T, f *testutil.FakeFetcher, args ...string) (string, error) {
	t.Helper()

	cfg := config.Default()
	cfg.APIKey = "test-token"

	out := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{Config: cfg, Fetcher: f})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func TestTablesCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "tables")
	require.NoError(t, err)
	assert.Equal(t, "Available tables:\nARTWORKS\nAUTHORS\nBOOKS\nEDITIONS\nPUBLISHERS\nREVIEWS\n", out)
}

func TestGetCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "get", "authors")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, format.Separator))
	assert.Contains(t, out, "N. K. Jemisin (N/A)\n  Website: N/A\n")
	assert.Contains(t, out, "  Website: silviamoreno-garcia.com\n")
}

func TestGetCommandEmptyTable(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "get", "reviews")
	require.NoError(t, err)
	assert.Equal(t, "No records found in REVIEWS.\n", out)
}

func TestGetCommandJSON(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "get", "EDITIONS")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "EDITIONS", data["table"])
	assert.EqualValues(t, 1, data["count"])

	recs := data["records"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "Orbit 2015", recs[0].(map[string]any)["Title"])
}

func TestUnknownTable(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "get", "magazines")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownTable, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "magazines")

	details := resp.Error.Details.(map[string]any)
	assert.Len(t, details["available"], 6)
}

func TestFieldsCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "fields", "Authors")
	require.NoError(t, err)
	assert.Equal(t, "Fields for AUTHORS:\nId\nName\n", out)
}

func TestFieldsCommandEmptyTable(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "fields", "reviews")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E203]: table REVIEWS has no records\n", out)
}

func TestEmptyCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "empty", "authors", "website")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Records with empty 'website' in AUTHORS:\n"+format.Separator+"\n"))
	assert.Contains(t, out, "N. K. Jemisin")
	assert.Contains(t, out, "Nobody Yet")
	assert.NotContains(t, out, "Silvia Moreno-Garcia")
}

func TestEmptyCommandNoneEmpty(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "empty", "authors", "Name")
	require.NoError(t, err)
	assert.Equal(t, "No records with empty 'Name' found in AUTHORS.\n", out)
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "search", "GOTHIC", "books")
	require.NoError(t, err)
	assert.Contains(t, out, "Mexican Gothic (2020)\n")
	assert.NotContains(t, out, "The Fifth Season")
}

func TestSearchCommandFields(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "search", "read", "books", "--field", "Status", "--field", "Title")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, format.Separator), "each book is printed once")
}

func TestSearchCommandNoMatch(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "search", "dragons", "books")
	require.NoError(t, err)
	assert.Equal(t, "No matches found for 'dragons' in Title of BOOKS.\n", out)

	out, err = execute(t, libraryFetcher(), "search", "dragons", "books", "--field", "Genre", "--field", "Tags")
	require.NoError(t, err)
	assert.Equal(t, "No matches found for 'dragons' in any of [Genre, Tags] of BOOKS.\n", out)
}

func TestVibeCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "vibe", "geology")
	require.NoError(t, err)
	assert.Contains(t, out, "The Fifth Season (2015)\n")
	assert.Contains(t, out, "   Tags: geology, found family\n")
}

func TestFilterCommand(t *testing.T) {
	f := libraryFetcher()
	out, err := execute(t, f, "filter", "books", "Genre=fantasy", "OR:Owned=true,false")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "1 record(s) in BOOKS matching genre=fantasy AND OR:owned=true,false:", lines[0])
	assert.Equal(t, format.Separator, lines[1])
	assert.Equal(t, "The Fifth Season (2015)", lines[2])
	assert.NotContains(t, out, "Mexican Gothic")
	assert.Equal(t, 1, f.Calls(config.TableBooks))
}

func TestFilterCommandJSON(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "filter", "BOOKS", "NOT:Genre=fantasy", "Owned=no")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "BOOKS", data["table"])
	assert.Equal(t, []any{"NOT:genre=fantasy", "owned=no"}, data["criteria"])
	assert.Equal(t, map[string]any{"genre": "string", "owned": "boolean"}, data["types"])
	assert.EqualValues(t, 1, data["count"])

	recs := data["records"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "Mexican Gothic", recs[0].(map[string]any)["Title"])
}

func TestFilterCommandNoMatches(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "filter", "books", "Genre=romance")
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, GetExitCode(err))
	assert.Equal(t, "No matching records found.\n", out)
}

func TestFilterCommandNoMatchesJSON(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "filter", "books", "Genre=romance")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.EqualValues(t, 0, data["count"])
	assert.Equal(t, []any{}, data["records"])
}

func TestFilterCommandTypeOverride(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "filter", "books", "Rating=5", "--type", "rating=string")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, map[string]any{"rating": "string"}, data["types"])
	assert.EqualValues(t, 1, data["count"])
}

func TestFilterCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"missing separator", []string{"Genre"}, ErrCodeParse, ExitCommandError},
		{"unknown field", []string{"Colour=red"}, ErrCodeSchema, ExitCommandError},
		{"bad boolean", []string{"Owned=maybe"}, ErrCodeCoercion, ExitCommandError},
		{"bad integer", []string{"Rating=five"}, ErrCodeCoercion, ExitCommandError},
		{"bad type override", []string{"Rating=5", "--type", "rating=blob"}, ErrCodeUsage, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"filter", "books"}, tt.args...)
			out, err := execute(t, libraryFetcher(), args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			// The error line is the only output.
			assert.True(t, strings.HasPrefix(out, "Error ["+tt.wantCode+"]: "), "output: %q", out)
			assert.Equal(t, 1, strings.Count(out, "\n"))
		})
	}
}

func TestFilterCommandEmptyTable(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "filter", "reviews", "Title=x")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeEmptyTable, resp.Error.Code)
}

func TestFilterCommandFetchError(t *testing.T) {
	f := libraryFetcher().WithError(config.TableBooks, &client.FetchError{
		Table:   config.TableBooks,
		Status:  http.StatusUnauthorized,
		Message: "Invalid token",
	})

	out, err := execute(t, f, "filter", "books", "Genre=fantasy")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E205]: fetch BOOKS: HTTP 401: Invalid token\n", out)
}

func TestFilterCommandRequiresCriteria(t *testing.T) {
	_, err := execute(t, libraryFetcher(), "filter", "books")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestAuthorWorksCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "author-works", "n. k. jemisin")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Books by n. k. jemisin:\n"+format.Separator+"\nThe Fifth Season (2015)\n"))
	assert.NotContains(t, out, "Mexican Gothic")
}

func TestAuthorWorksCommandNoBooks(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "author-works", "Nobody Yet")
	require.NoError(t, err)
	assert.Equal(t, "Books by Nobody Yet:\n"+format.Separator+"\nNo books found from this author.\n", out)
}

func TestAuthorWorksCommandNotFound(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "author-works", "Ursula K. Le Guin")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E206]: author not found: \"Ursula K. Le Guin\"\n", out)
}

func TestListEditionsCommand(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "list-editions", "the fifth season")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Editions of The Fifth Season (2015):\n"+format.Separator+"\nOrbit 2015 (2015)\n"))
	assert.Contains(t, out, "  Book: The Fifth Season (2015)\n")
}

func TestListEditionsCommandNone(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "list-editions", "Mexican Gothic (2020)")
	require.NoError(t, err)
	assert.Equal(t, "Editions of Mexican Gothic (2020):\n"+format.Separator+"\nNo editions found for this book.\n", out)
}

func TestListEditionsCommandJSON(t *testing.T) {
	out, err := execute(t, libraryFetcher(), "--format", "json", "list-editions", "The Fifth Season")
	require.NoError(t, err)

	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, "The Fifth Season", data["book"].(map[string]any)["Title"])
	assert.EqualValues(t, 1, data["count"])
}
