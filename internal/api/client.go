package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	bearerPrefix    = "Bearer "
	headerRequestID = "X-Request-ID"
	defaultTimeout  = 30 * time.Second
)

// TokenSource supplies the persisted bearer token, if any
type TokenSource interface {
	Token() (string, bool)
}

// Client is an HTTP client for the ODG delivery API
type Client struct {
	baseURL    string
	origin     *url.URL
	httpClient *http.Client
	tokens     TokenSource
	validate   *validator.Validate
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithOrigin sets the origin that relative request URLs are resolved against
func WithOrigin(origin *url.URL) Option {
	return func(c *Client) {
		c.origin = origin
	}
}

// WithHTTPClient replaces the default http.Client (30s timeout, cookie jar)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for per-request debug lines
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the timeout of the default http.Client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new API client. An empty baseURL keeps request paths
// relative; they are then sent to the origin.
func New(baseURL string, opts ...Option) *Client {
	// cookiejar.New only fails on a bad PublicSuffixList, and we pass none
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
		validate: validator.New(),
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetTokenSource sets where the bearer token is read from
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Validator returns the validator used for response shape checks
func (c *Client) Validator() *validator.Validate {
	return c.validate
}

// Get fetches path and decodes the response into T
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out, opts...)
	return out, err
}

// Post sends body as JSON to path and decodes the response into T
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, path, body, &out, opts...)
	return out, err
}

// Put replaces the resource at path with body and decodes the response into T
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, path, body, &out, opts...)
	return out, err
}

// Delete deletes the resource at path and decodes the response into T
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodDelete, path, nil, &out, opts...)
	return out, err
}

// Do performs one request. A nil body sends no body; a nil out discards the
// response. Non-2xx responses return *RequestError, 2xx bodies that do not
// fit out return *ShapeError. Nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	ro := newRequestOptions(opts)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := c.NewRequest(ctx, method, path, reqBody, ro)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", method).
			Str("url", req.URL.String()).
			Str("request_id", req.Header.Get(headerRequestID)).
			Msg("API request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", req.Header.Get(headerRequestID)).
		Msg("API request")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &ShapeError{Method: method, URL: req.URL.String(), Err: err}
	}

	if err := c.checkShape(out); err != nil {
		return &ShapeError{Method: method, URL: req.URL.String(), Err: err}
	}

	return nil
}

// NewRequest builds an authenticated request for path. It is used by Do and
// by callers that need the raw response, such as event streams.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader, ro *RequestOptions) (*http.Request, error) {
	if ro == nil {
		ro = newRequestOptions(nil)
	}

	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range ro.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if !ro.noAuth && req.Header.Get("Authorization") == "" && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", bearerPrefix+token)
		}
	}

	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, ulid.Make().String())
	}

	return req, nil
}

// HTTPClient returns the underlying http.Client
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) resolve(path string) (string, error) {
	resolved := ResolveURL(c.baseURL, path)

	ref, err := url.Parse(resolved)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", resolved, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	if c.origin == nil {
		return "", fmt.Errorf("relative request URL %q needs an origin or a base URL", resolved)
	}
	return c.origin.ResolveReference(ref).String(), nil
}

// checkShape runs validate tags over decoded structs and slices of structs
func (c *Client) checkShape(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Addr().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			for elem.Kind() == reflect.Pointer {
				if elem.IsNil() {
					break
				}
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := c.validate.Struct(elem.Addr().Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}

	return nil
}
