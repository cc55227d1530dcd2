package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/richxcame/pos-pricing/pkg/resilience"
)

const defaultTimeout = 30 * time.Second

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is a small JSON HTTP client with optional retries and circuit breaking
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig *resilience.RetryConfig
	breaker     *resilience.CircuitBreaker
}

// Option configures a Client
type Option func(*Client)

// NewClient creates a client for baseURL. The first timeout, when positive, overrides the default.
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	t := defaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		t = timeout[0]
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: t},
	}
}

// WithRetry enables retries using the given policy
func WithRetry(config resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retryConfig = &config
	}
}

// WithDefaultRetry enables the default retry policy, retrying only retryable HTTP failures
func WithDefaultRetry() Option {
	return func(c *Client) {
		config := resilience.DefaultRetryConfig()
		config.RetryableChecker = isHTTPRetryable
		c.retryConfig = &config
	}
}

// WithBreaker routes every request through the circuit breaker
func WithBreaker(breaker *resilience.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = breaker
	}
}

// Apply applies options to the client and returns it
func (c *Client) Apply(opts ...Option) *Client {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and returns the response body
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return c.execute(ctx, http.MethodGet, path, nil, headers)
}

// Post performs a POST request with a JSON body and returns the response body
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	return c.execute(ctx, http.MethodPost, path, payload, headers)
}

// GetJSON performs a GET request and decodes the JSON response into out
func (c *Client) GetJSON(ctx context.Context, path string, headers map[string]string, out interface{}) error {
	body, err := c.Get(ctx, path, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	op := func(ctx context.Context) (interface{}, error) {
		return c.do(ctx, method, path, payload, headers)
	}

	if c.breaker != nil {
		breakerOp := op
		op = func(ctx context.Context) (interface{}, error) {
			return c.breaker.Execute(ctx, breakerOp)
		}
	}

	var (
		result interface{}
		err    error
	)
	if c.retryConfig != nil {
		result, err = resilience.Retry(ctx, *c.retryConfig, op)
	} else {
		result, err = op(ctx)
	}
	if err != nil {
		return nil, err
	}

	body, _ := result.([]byte)
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// isHTTPRetryable retries server errors, throttling and transport failures, never other client errors
func isHTTPRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return resilience.IsRetryableHTTPStatus(httpErr.StatusCode)
	}
	return true
}
