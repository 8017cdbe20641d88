// Package validator is a client for the RPKI validator REST API.
//
// List endpoints take a table.Query and return a table.Page, so their
// method values can be handed to a table.Controller as fetchers.
package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDHeader carries the per-request id, also logged by the client.
const RequestIDHeader = "X-Request-ID"

// ErrNotFound is matched by an *APIError with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the validator.
type APIError struct {
	StatusCode int
	Code       string
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("validator returned %d: %s", e.StatusCode, msg)
}

// Is makes errors.Is(err, ErrNotFound) work for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond and Burst pace outgoing requests. Zero disables
	// pacing.
	RequestsPerSecond float64
	Burst             int

	// CacheSize and CacheTTL bound the detail lookup caches. Either being
	// zero disables caching.
	CacheSize int
	CacheTTL  time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one validator instance. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	trustAnchors *expirable.LRU[int64, TrustAnchor]
	validity     *expirable.LRU[string, BgpValidity]
}

// New creates a client for the validator at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing validator url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("validator url %q must be absolute", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		base:   base,
		http:   httpClient,
		logger: logger,
	}

	if opts.RequestsPerSecond > 0 {
		burst := max(opts.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	if opts.CacheSize > 0 && opts.CacheTTL > 0 {
		c.trustAnchors = expirable.NewLRU[int64, TrustAnchor](opts.CacheSize, nil, opts.CacheTTL)
		c.validity = expirable.NewLRU[string, BgpValidity](opts.CacheSize, nil, opts.CacheTTL)
	}

	return c, nil
}

// BaseURL returns the validator base URL.
func (c *Client) BaseURL() string { return c.base.String() }

type envelope[T any] struct {
	Data     T         `json:"data"`
	Metadata *metadata `json:"metadata,omitempty"`
}

type metadata struct {
	TotalCount int `json:"totalCount"`
}

type command[T any] struct {
	Data T `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Status string `json:"status"`
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// listParams maps a query to the validator's paging parameters. An empty
// sort column leaves the order to the server.
func listParams(q table.Query) url.Values {
	v := url.Values{}
	v.Set("startFrom", strconv.Itoa(q.FirstItemIndex))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	v.Set("search", q.SearchTerm)
	if q.SortColumn != "" {
		v.Set("sortBy", q.SortColumn)
		v.Set("sortDirection", string(q.SortDirection))
	}
	return v
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// do sends one request and decodes a successful body into out, which may be
// nil for responses without content.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating request id: %w", err)
	}
	req.Header.Set(RequestIDHeader, id.String())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("validator request failed",
			"request_id", id.String(),
			"method", method,
			"path", path,
			"error", err,
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("validator request",
		"request_id", id.String(),
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}

	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && len(er.Errors) > 0 {
		first := er.Errors[0]
		apiErr.Code = first.Code
		apiErr.Title = first.Title
		apiErr.Detail = first.Detail
	}
	return apiErr
}

// list fetches a paged endpoint. The validator reports the filtered total
// only, so the absolute count is left to the controller.
func list[T any](ctx context.Context, c *Client, path string, params url.Values) (table.Page[T], error) {
	var env envelope[[]T]
	if err := c.do(ctx, http.MethodGet, path, params, nil, &env); err != nil {
		return table.Page[T]{}, err
	}

	page := table.Page[T]{Rows: env.Data, TotalCount: len(env.Data)}
	if env.Metadata != nil {
		page.TotalCount = env.Metadata.TotalCount
	}
	return page, nil
}

func get[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var env envelope[T]
	if err := c.do(ctx, http.MethodGet, path, params, nil, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}
