package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// RetryConfig controls exponential backoff retries.
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	EnableJitter      bool

	// RetryableErrors restricts retries to these errors when non-empty.
	RetryableErrors []error
	// RetryableChecker overrides RetryableErrors when set.
	RetryableChecker func(err error) bool
}

// DefaultRetryConfig returns the retry policy used for outbound HTTP calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// Retry runs op until it succeeds, returns a non-retryable error, or attempts run out.
func Retry(ctx context.Context, config RetryConfig, op Operation) (interface{}, error) {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts || !shouldRetry(err, config) {
			break
		}

		timer := time.NewTimer(calculateBackoff(attempt, config))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// RetryWithBreaker retries op, sending every attempt through the breaker.
func RetryWithBreaker(ctx context.Context, config RetryConfig, breaker *CircuitBreaker, op Operation) (interface{}, error) {
	return Retry(ctx, config, func(ctx context.Context) (interface{}, error) {
		return breaker.Execute(ctx, op)
	})
}

// IsRetryableHTTPStatus reports whether an HTTP status code is worth retrying.
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return statusCode >= 500
}

func shouldRetry(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	if config.RetryableChecker != nil {
		return config.RetryableChecker(err)
	}
	if len(config.RetryableErrors) == 0 {
		return true
	}
	for _, retryable := range config.RetryableErrors {
		if errors.Is(err, retryable) {
			return true
		}
	}
	return false
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	multiplier := config.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	backoff := float64(config.InitialBackoff) * math.Pow(multiplier, float64(attempt-1))
	if config.MaxBackoff > 0 && backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	d := time.Duration(backoff)
	if config.EnableJitter {
		d = addJitter(d)
	}
	return d
}

// addJitter returns a random duration in [0, d] (full jitter).
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}
