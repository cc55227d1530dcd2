package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errFeedDown   = errors.New("feed down")
	errBadRequest = errors.New("bad request")
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetryConfig(4), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errFeedDown
		}
		return "rates", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "rates", result)
	assert.Equal(t, 3, calls)
}

func TestRetry_ReturnsLastErrorWhenAttemptsExhausted(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetryConfig(3), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errFeedDown
	})

	assert.Nil(t, result)
	assert.Equal(t, errFeedDown, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetryConfig(0), func(ctx context.Context) (interface{}, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RespectsChecker(t *testing.T) {
	cfg := fastRetryConfig(5)
	cfg.RetryableChecker = func(err error) bool { return !errors.Is(err, errBadRequest) }

	calls := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errBadRequest
	})

	assert.ErrorIs(t, err, errBadRequest)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetryableErrorList(t *testing.T) {
	cfg := fastRetryConfig(3)
	cfg.RetryableErrors = []error{errFeedDown}

	calls := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, errBadRequest
	})

	assert.ErrorIs(t, err, errBadRequest)
	assert.Equal(t, 1, calls)
}

func TestRetry_DoesNotRetryOpenCircuitOrCancellation(t *testing.T) {
	for _, stopErr := range []error{ErrCircuitOpen, context.Canceled} {
		calls := 0
		_, err := Retry(context.Background(), fastRetryConfig(4), func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, stopErr
		})

		assert.ErrorIs(t, err, stopErr)
		assert.Equal(t, 1, calls)
	}
}

func TestRetry_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetryConfig(5)
	cfg.InitialBackoff = 50 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond

	calls := 0
	_, err := Retry(ctx, cfg, func(ctx context.Context) (interface{}, error) {
		calls++
		cancel()
		return nil, errFeedDown
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff:    time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, calculateBackoff(tt.attempt, cfg), "attempt %d", tt.attempt)
	}
}

func TestAddJitter_StaysWithinBounds(t *testing.T) {
	assert.Equal(t, time.Duration(0), addJitter(0))

	for i := 0; i < 20; i++ {
		d := addJitter(time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	assert.False(t, IsRetryableHTTPStatus(200))
	assert.False(t, IsRetryableHTTPStatus(400))
	assert.False(t, IsRetryableHTTPStatus(404))
	assert.True(t, IsRetryableHTTPStatus(408))
	assert.True(t, IsRetryableHTTPStatus(429))
	assert.True(t, IsRetryableHTTPStatus(500))
	assert.True(t, IsRetryableHTTPStatus(503))
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:             "test-feed",
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, NoopFallback)

	failing := func(ctx context.Context) (interface{}, error) { return nil, errFeedDown }

	_, err := cb.Execute(context.Background(), failing)
	assert.ErrorIs(t, err, errFeedDown)
	_, err = cb.Execute(context.Background(), failing)
	assert.ErrorIs(t, err, errFeedDown)

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	calls := 0
	_, err = cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return "unreachable", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)
}

func TestCircuitBreaker_StaticFallback(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-static", Timeout: time.Minute, FailureThreshold: 1}, StaticFallback("cached"))

	_, _ = cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return nil, errFeedDown })
	result, err := cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return "live", nil })

	require.NoError(t, err)
	assert.Equal(t, "cached", result)
}

func TestRetryWithBreaker_RecoversBeforeTripping(t *testing.T) {
	cb := NewCircuitBreaker(BuildSettings("test-retry-breaker", 1, 1, 3, 1), NoopFallback)

	calls := 0
	result, err := RetryWithBreaker(context.Background(), fastRetryConfig(3), cb, func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 2 {
			return nil, errFeedDown
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestBuildSettings_Defaults(t *testing.T) {
	s := BuildSettings("defaults", 0, 0, 0, 0)

	assert.Equal(t, time.Minute, s.Interval)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, uint32(5), s.FailureThreshold)
	assert.Equal(t, uint32(1), s.SuccessThreshold)
}
