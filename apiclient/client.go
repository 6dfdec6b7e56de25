package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Client executes requests against one base URL. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
	metrics    *metrics
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client) error

// WithHTTPClient replaces the transport. Timeouts belong to this client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithTokenSource sets where bearer tokens are read from.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) error {
		c.tokens = ts
		return nil
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithMetrics registers request collectors on reg.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) error {
		m, err := newMetrics(reg)
		if err != nil {
			return errors.Wrap(err, "[apiclient WithMetrics] register collectors")
		}
		c.metrics = m
		return nil
	}
}

// New creates a Client for baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient New] baseURL is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource wires the token source after construction, for callers whose
// token source itself depends on the client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Do executes one request and decodes a successful response into T. Every
// returned error is an *Error.
func Do[T any](ctx context.Context, c *Client, method, path string, payload any, cfg *RequestConfig) (T, error) {
	var result T
	raw, err := c.execute(ctx, method, path, payload, cfg)
	if err != nil {
		return result, err
	}
	if len(raw) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("decode response")
		return result, networkError(errors.Wrap(err, "decode response"))
	}
	return result, nil
}

func Get[T any](ctx context.Context, c *Client, path string, cfg *RequestConfig) (T, error) {
	return Do[T](ctx, c, http.MethodGet, path, nil, cfg)
}

func Post[T any](ctx context.Context, c *Client, path string, payload any, cfg *RequestConfig) (T, error) {
	return Do[T](ctx, c, http.MethodPost, path, payload, cfg)
}

func Put[T any](ctx context.Context, c *Client, path string, payload any, cfg *RequestConfig) (T, error) {
	return Do[T](ctx, c, http.MethodPut, path, payload, cfg)
}

func Patch[T any](ctx context.Context, c *Client, path string, payload any, cfg *RequestConfig) (T, error) {
	return Do[T](ctx, c, http.MethodPatch, path, payload, cfg)
}

func Delete[T any](ctx context.Context, c *Client, path string, cfg *RequestConfig) (T, error) {
	return Do[T](ctx, c, http.MethodDelete, path, nil, cfg)
}

// execute returns the raw success body, or an *Error.
func (c *Client) execute(ctx context.Context, method, path string, payload any, cfg *RequestConfig) ([]byte, error) {
	requestID := uuid.NewString()
	logger := c.logger.With().Str("request_id", requestID).Str("method", method).Str("path", path).Logger()
	done := c.metrics.start()
	begin := time.Now()

	req, err := c.newRequest(ctx, method, path, payload, cfg)
	if err != nil {
		done(method, path, 0)
		logger.Debug().Err(err).Msg("build request")
		return nil, networkError(err)
	}
	req.Header.Set(headerRequestID, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		done(method, path, 0)
		logger.Debug().Err(err).Dur("duration", time.Since(begin)).Msg("request failed")
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	done(method, path, resp.StatusCode)
	logger.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(begin)).Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		diag := parseDiagnostic(body)
		return nil, &Error{
			Message:    diagnosticMessage(diag, resp.StatusCode),
			StatusCode: resp.StatusCode,
			RawBody:    diag,
		}
	}
	if err != nil {
		return nil, networkError(errors.Wrap(err, "read response"))
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any, cfg *RequestConfig) (*http.Request, error) {
	target, err := BuildURL(c.baseURL, path, cfg.params())
	if err != nil {
		return nil, err
	}
	body, formContentType, err := encodeBody(method, payload, cfg.useFormData())
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient newRequest]")
	}

	for k, v := range cfg.headers() {
		req.Header.Set(k, v)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(ctx); token != "" {
			(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
		}
	}
	if cfg.useFormData() {
		if formContentType != "" {
			req.Header.Set("Content-Type", formContentType)
		}
	} else {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	return req, nil
}

// parseDiagnostic decodes an error body, falling back to an empty object.
func parseDiagnostic(body []byte) any {
	var diag any
	if len(body) == 0 || json.Unmarshal(body, &diag) != nil || diag == nil {
		return map[string]any{}
	}
	return diag
}
