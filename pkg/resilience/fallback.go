package resilience

import (
	"context"

	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc decides the result of a call rejected by an open breaker.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback surfaces ErrCircuitOpen to the caller.
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// StaticFallback answers rejected calls with a fixed value.
func StaticFallback(defaultValue interface{}) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("circuit breaker open, returning static fallback", zap.Error(err))
		return defaultValue, nil
	}
}

// SkipFallback logs that the dependency is unavailable and returns ErrCircuitOpen,
// so callers can skip the work for this cycle and keep their last good state.
func SkipFallback(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("dependency unavailable, skipping call",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
