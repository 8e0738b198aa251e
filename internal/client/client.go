// Package client fetches table records from the library REST API.
//
// The API is NocoDB-shaped:
//
//	GET {base_url}/api/v2/tables/{table_id}/records
//	accept: application/json
//	xc-token: {api_key}
//
// and answers with {"list": [...records...]}. Every request carries a fresh
// X-Request-Id so verbose logs can be correlated with server logs.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/record"
)

// maxErrorBody caps how much of a failed response body ends up in a
// FetchError message.
const maxErrorBody = 512

// Client reads records from the library API. It implements filter.Fetcher.
type Client struct {
	cfg  *config.Config
	http *http.Client
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for cfg. The default http.Client uses cfg.Timeout.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchError reports a failed fetch: a non-200 answer (Status set) or a
// transport/decoding failure (Status 0, Err set).
type FetchError struct {
	Table   string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %s", e.Table, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Table, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Table, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError returns true if err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// listResponse is the envelope of the records endpoint.
type listResponse struct {
	List []record.Record `json:"list"`
}

// FetchRecords returns every record of table (any case), in API order.
func (c *Client) FetchRecords(ctx context.Context, table string) ([]record.Record, error) {
	name, err := c.cfg.ResolveTable(table)
	if err != nil {
		return nil, err
	}
	endpoint, err := c.recordsURL(c.cfg.Tables[name])
	if err != nil {
		return nil, &FetchError{Table: name, Message: "invalid base URL", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Table: name, Message: "building request", Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("accept", "application/json")
	req.Header.Set("xc-token", c.cfg.APIKey)
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("table", name).Str("request_id", requestID).Err(err).Msg("request failed")
		return nil, &FetchError{Table: name, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Debug().
			Str("table", name).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Msg("unexpected status")
		return nil, &FetchError{
			Table:   name,
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &FetchError{Table: name, Message: "decoding response", Err: err}
	}

	c.log.Debug().
		Str("table", name).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("records", len(payload.List)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched records")

	return payload.List, nil
}

func (c *Client) recordsURL(tableID string) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/"))
	if err != nil {
		return "", err
	}
	return base.JoinPath("api", "v2", "tables", tableID, "records").String(), nil
}
