package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/richxcame/pos-pricing/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Timeouts(t *testing.T) {
	assert.Equal(t, defaultTimeout, NewClient("https://api.example.com").httpClient.Timeout)
	assert.Equal(t, defaultTimeout, NewClient("https://api.example.com", 0).httpClient.Timeout)
	assert.Equal(t, 5*time.Second, NewClient("https://api.example.com", 5*time.Second, time.Minute).httpClient.Timeout)
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "custom", r.Header.Get("X-Custom"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	body, err := NewClient(server.URL).Get(context.Background(), "/latest/USD", map[string]string{"X-Custom": "custom"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"success"}`, string(body))
}

func TestClient_Get_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Get(context.Background(), "/nope", nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "HTTP 404: missing", httpErr.Error())
}

func TestClient_Post_SendsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Post(context.Background(), "/", map[string]string{"a": "b"}, nil)
	require.NoError(t, err)
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"conversion_rates":{"VES":40.5}}`))
	}))
	defer server.Close()

	var out struct {
		ConversionRates map[string]float64 `json:"conversion_rates"`
	}
	err := NewClient(server.URL).GetJSON(context.Background(), "/", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, 40.5, out.ConversionRates["VES"])
}

func TestClient_Get_WithRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL).Apply(WithRetry(resilience.RetryConfig{
		MaxAttempts:      5,
		InitialBackoff:   time.Millisecond,
		MaxBackoff:       5 * time.Millisecond,
		RetryableChecker: isHTTPRetryable,
	}))

	body, err := client.Get(context.Background(), "/", nil)

	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
	assert.Equal(t, 3, attempts)
}

func TestClient_Get_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL).Apply(WithRetry(resilience.RetryConfig{
		MaxAttempts:      4,
		InitialBackoff:   time.Millisecond,
		RetryableChecker: isHTTPRetryable,
	}))

	_, err := client.Get(context.Background(), "/", nil)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_WithBreaker_ShortCircuits(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "httpclient-test",
		Timeout:          time.Minute,
		FailureThreshold: 1,
	}, resilience.NoopFallback)
	client := NewClient(server.URL).Apply(WithBreaker(breaker))

	_, err := client.Get(context.Background(), "/", nil)
	require.Error(t, err)

	_, err = client.Get(context.Background(), "/", nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 1, attempts)
}

func TestIsHTTPRetryable(t *testing.T) {
	assert.False(t, isHTTPRetryable(nil))
	assert.True(t, isHTTPRetryable(&HTTPError{StatusCode: 500}))
	assert.True(t, isHTTPRetryable(&HTTPError{StatusCode: 429}))
	assert.False(t, isHTTPRetryable(&HTTPError{StatusCode: 400}))
	assert.False(t, isHTTPRetryable(&HTTPError{StatusCode: 404}))
	assert.True(t, isHTTPRetryable(context.DeadlineExceeded))
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL).Get(ctx, "/slow", nil)
	assert.Error(t, err)
}
