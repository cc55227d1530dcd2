package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when a call is rejected because the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Operation is a unit of work protected by a breaker or retried.
type Operation func(ctx context.Context) (interface{}, error)

// Settings configures a circuit breaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// CircuitBreaker wraps gobreaker with metrics and a fallback.
type CircuitBreaker struct {
	name     string
	breaker  *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker creates a breaker that trips after FailureThreshold consecutive failures.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := nextBreakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}

	failureThreshold := settings.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}
	successThreshold := settings.SuccessThreshold
	if successThreshold == 0 {
		successThreshold = 1
	}

	cb := &CircuitBreaker{name: name, fallback: fallback}
	cb.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: successThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			recordBreakerStateChange(name, from, to)
		},
	})
	recordBreakerState(name, gobreaker.StateClosed)

	return cb
}

// Name returns the breaker name used for metrics.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Execute runs op through the breaker. When the breaker rejects the call the fallback decides the result.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	recordBreakerRequest(cb.name)

	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		recordBreakerFallback(cb.name)
		return cb.fallback(ctx, err)
	}

	recordBreakerFailure(cb.name)
	return nil, err
}
