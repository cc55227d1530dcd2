package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/pkg/common"
)

const (
	// TenantIDHeader carries the business that owns the request. It is set by the
	// authenticating gateway in front of this service.
	TenantIDHeader = "X-Tenant-ID"
	// TenantIDKey is the gin context key for the parsed tenant ID
	TenantIDKey = "tenant_id"
)

// RequireTenant rejects requests without a valid tenant header
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.GetHeader(TenantIDHeader))
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "missing or invalid "+TenantIDHeader+" header")
			c.Abort()
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant ID stored by RequireTenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
