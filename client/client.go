// Package client is the storefront's API gateway and its domain API
// modules. Every request carries the anonymous session identifier in the
// session-id header when one exists.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// SessionHeader carries the session identifier.
	SessionHeader = "session-id"
)

// SessionSource supplies the current session identifier.
type SessionSource interface {
	GetSession(ctx context.Context) (string, bool)
}

// APIError is returned for every failed request: transport failures,
// undecodable bodies and non-2xx responses alike.
type APIError struct {
	Method string
	Path   string
	Status int    // 0 for transport failures
	Detail string // server-provided message, if any
	Err    error
}

func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage returns the server's detail message.
func (e *APIError) UserMessage() string { return e.Detail }

// Client is the API gateway.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	sessions SessionSource
	log      zerolog.Logger

	Products *Products
	Cart     *Cart
	Checkout *Checkout
	Chatbot  *Chatbot
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (including the /api prefix).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client itself is
// never modified; a timeout set with WithTimeout applies to a copy.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout, regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a gateway. sessions may be nil, in which case no session
// header is ever sent.
func New(sessions SessionSource, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		sessions: sessions,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.http == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		h := *c.http
		h.Timeout = c.timeout
		c.http = &h
	}

	c.Products = &Products{c: c}
	c.Cart = &Cart{c: c}
	c.Checkout = &Checkout{c: c}
	c.Chatbot = &Chatbot{c: c}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CheckHealth reports whether the server answers its health probe.
// The probe lives at the server root, outside the /api prefix.
func (c *Client) CheckHealth(ctx context.Context) bool {
	root := strings.TrimSuffix(c.baseURL, "/api")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/health", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("health check failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "healthy"
}

// do performs one request against the API and decodes the JSON response
// into out (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return c.fail(&APIError{Method: method, Path: path, Err: fmt.Errorf("encode request: %w", err)})
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.fail(&APIError{Method: method, Path: path, Err: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.sessions != nil {
		if id, ok := c.sessions.GetSession(ctx); ok {
			req.Header.Set(SessionHeader, id)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(&APIError{Method: method, Path: path, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&APIError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(&APIError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Detail: detailOf(raw),
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		})
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(&APIError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

func (c *Client) fail(err *APIError) error {
	c.log.Error().
		Str("method", err.Method).
		Str("path", err.Path).
		Int("status", err.Status).
		Str("detail", err.Detail).
		Err(err.Err).
		Msg("api request failed")
	return err
}

func detailOf(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch d := body.Detail.(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		b, _ := json.Marshal(d)
		return string(b)
	}
}
