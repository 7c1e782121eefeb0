// Package endpoint holds the public probe handlers.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Message    string             `json:"message"`
	Status     string             `json:"status"`
	ClientIP   string             `json:"client_ip"`
	Timestamp  string             `json:"timestamp"`
	Version    string             `json:"version"`
	Components []component.Health `json:"components,omitempty"`
}

// Health reports overall service health. Any unhealthy component turns the
// response into a 503.
func Health(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, components := aggregate(c.Request.Context(), checker)

		httpStatus := http.StatusOK
		message := "API is healthy"
		if status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
			message = "API is unhealthy"
		}

		c.JSON(httpStatus, HealthResponse{
			Message:    message,
			Status:     string(status),
			ClientIP:   c.ClientIP(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Version:    version.Version,
			Components: components,
		})
	}
}

func aggregate(ctx context.Context, checker HealthChecker) (component.HealthStatus, []component.Health) {
	if checker == nil {
		return component.StatusHealthy, nil
	}
	status := component.StatusHealthy
	components := checker(ctx)
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy, components
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status, components
}
