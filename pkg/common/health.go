package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheckWithDeps returns a health handler that runs every dependency check.
// Any failing check turns the response into a 503.
func HealthCheckWithDeps(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		results := make(map[string]string, len(checks))

		for name, check := range checks {
			if err := check(); err != nil {
				results[name] = "unhealthy: " + err.Error()
				status = "unhealthy"
				continue
			}
			results[name] = "healthy"
		}

		statusCode := http.StatusOK
		if status != "healthy" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, HealthResponse{
			Status:  status,
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}
