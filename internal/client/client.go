// ABOUTME: HTTP client for the SafePulse crime-records backend
// ABOUTME: Single entry point for all calls; attaches tokens and recovers from expiry

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/markalston/safepulse-cli/internal/session"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the local development backend.
	DefaultBaseURL = "http://localhost:8000"
	// RefreshPath is the token refresh endpoint.
	RefreshPath = "/api/auth/token/refresh/"
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 30 * time.Second
)

// TokenStore is the session state the client depends on.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string) error
	SetAuth(officer session.Officer, tokens session.TokenPair) error
	UpdateOfficer(officer session.Officer) error
	Logout() error
}

// Client is the API client for the SafePulse backend. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
	logger     *slog.Logger

	requestStages  []RequestStage
	responseStages []ResponseStage

	refreshGroup singleflight.Group

	mu              sync.Mutex
	expiredHandlers []func(error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-exchange timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRequestStage appends a stage after the built-in request stages.
func WithRequestStage(s RequestStage) Option {
	return func(c *Client) {
		c.requestStages = append(c.requestStages, s)
	}
}

// WithResponseStage appends a stage after the built-in response stages.
func WithResponseStage(s ResponseStage) Option {
	return func(c *Client) {
		c.responseStages = append(c.responseStages, s)
	}
}

// WithSessionExpiredHandler subscribes fn to session-expired events.
func WithSessionExpiredHandler(fn func(error)) Option {
	return func(c *Client) {
		c.expiredHandlers = append(c.expiredHandlers, fn)
	}
}

// New creates a new API client for baseURL backed by store. An empty
// baseURL selects DefaultBaseURL.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		store:  store,
		logger: slog.Default(),
	}
	c.requestStages = []RequestStage{
		withDefaultHeaders,
		withRequestID,
		bearerToken(store),
	}
	c.responseStages = []ResponseStage{
		c.refreshOnUnauthorized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionExpired subscribes fn to session-expired events. Handlers run
// after the session has been cleared, once per failed refresh.
func (c *Client) OnSessionExpired(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiredHandlers = append(c.expiredHandlers, fn)
}

// Do runs req through the pipeline: request stages, send, response stages.
// Non-2xx outcomes are returned as *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	req = req.Clone()
	for _, stage := range c.requestStages {
		req = stage(ctx, req)
	}

	resp, err := c.send(ctx, req)

	for _, stage := range c.responseStages {
		resp, err = stage(ctx, req, resp, err)
	}
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req, resp)
	}
	return resp, nil
}

// send performs one HTTP exchange and reads the whole body.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = req.Header.Clone()

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("Request failed",
			"request_id", req.Header.Get(RequestIDHeader),
			"method", req.Method,
			"path", req.Path,
			"error", err,
		)
		return nil, c.handleRequestError(ctx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Request completed",
		"request_id", req.Header.Get(RequestIDHeader),
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"retried", req.Retried,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// handleRequestError adds context to transport errors without hiding them
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// doJSON sends in as a JSON body (when non-nil) and decodes the response
// into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req := &Request{Method: method, Path: path, Query: query}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		req.Body = body
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeBody(resp, out)
}

// decodeBody decodes a JSON response body into out. Empty bodies and a nil
// out are no-ops.
func decodeBody(resp *Response, out any) error {
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// Download is a binary response such as a PDF or Excel report.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// download runs a binary request through the same pipeline as JSON calls.
func (c *Client) download(ctx context.Context, method, path string, in any, fallbackName string) (*Download, error) {
	req := &Request{Method: method, Path: path, Binary: true}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		req.Body = body
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return &Download{
		Filename:    attachmentName(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}, nil
}

// attachmentName extracts the filename from a Content-Disposition header.
func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}
