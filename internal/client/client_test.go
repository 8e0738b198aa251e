package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/record"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-token"
	return cfg
}

func TestFetchRecords(t *testing.T) {
	var gotPath, gotToken, gotAccept, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("xc-token")
		gotAccept = r.Header.Get("accept")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list": [
			{"Id": 1, "Title": "Kindred", "Owned": 1, "Rating": 4.5, "Author(s)": ["Octavia E. Butler"]},
			{"Id": 2, "Title": "Dawn", "Owned": 0, "Rating": null}
		], "pageInfo": {"totalRows": 2}}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	recs, err := c.FetchRecords(context.Background(), "books")
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/tables/mth1bd75romp8p3/records", gotPath)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "application/json", gotAccept)
	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err, "request id should be a UUID")

	require.Len(t, recs, 2)
	assert.Equal(t, record.Int(1), recs[0]["Id"])
	assert.Equal(t, record.Float(4.5), recs[0]["Rating"])
	assert.Equal(t, record.List{record.String("Octavia E. Butler")}, recs[0]["Author(s)"])
	assert.Equal(t, record.Null{}, recs[1]["Rating"])
}

func TestFetchRecordsBaseURLWithTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"list": []}`))
	}))
	defer srv.Close()

	recs, err := New(testConfig(srv.URL+"/")).FetchRecords(context.Background(), "AUTHORS")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, "/api/v2/tables/mgd51sp0b93cu0y/records", gotPath)
}

func TestFetchRecordsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"Invalid token"}` + "\n"))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).FetchRecords(context.Background(), "BOOKS")
	require.Error(t, err)
	assert.True(t, IsFetchError(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "BOOKS", fe.Table)
	assert.Equal(t, http.StatusUnauthorized, fe.Status)
	assert.Equal(t, `{"msg":"Invalid token"}`, fe.Message)
	assert.Equal(t, `fetch BOOKS: HTTP 401: {"msg":"Invalid token"}`, fe.Error())
}

func TestFetchRecordsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list": [1, 2]}`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).FetchRecords(context.Background(), "BOOKS")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, fe.Status)
	assert.Equal(t, "decoding response", fe.Message)
}

func TestFetchRecordsUnknownTable(t *testing.T) {
	c := New(testConfig("http://127.0.0.1:1"))

	_, err := c.FetchRecords(context.Background(), "magazines")
	require.Error(t, err)

	var ute *config.UnknownTableError
	assert.ErrorAs(t, err, &ute)
	assert.False(t, IsFetchError(err))
}

func TestFetchRecordsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond

	_, err := New(cfg).FetchRecords(context.Background(), "BOOKS")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "request failed", fe.Message)
	assert.Error(t, fe.Unwrap())
}

func TestFetchRecordsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(srv.URL)).FetchRecords(ctx, "BOOKS")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchRecordsLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list": [{"Id": 1}]}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := New(testConfig(srv.URL), WithLogger(log), WithHTTPClient(srv.Client())).FetchRecords(context.Background(), "BOOKS")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"table":"BOOKS"`)
	assert.Contains(t, buf.String(), `"records":1`)
	assert.Contains(t, buf.String(), `"request_id"`)
}
