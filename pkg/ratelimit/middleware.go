package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pos-pricing/pkg/common"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/richxcame/pos-pricing/pkg/middleware"
	"go.uber.org/zap"
)

// PerTenant limits each tenant to rule on the matched route. It must run
// after middleware.RequireTenant. Redis failures let the request through.
func PerTenant(limiter *Limiter, rule Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := middleware.GetTenantID(c)
		if !ok {
			c.Next()
			return
		}

		result, err := limiter.Allow(c.Request.Context(), c.FullPath(), tenantID.String(), rule)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("rate limiter unavailable",
				zap.String("endpoint", c.FullPath()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			common.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
