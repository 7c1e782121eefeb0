package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/feedback/component"
)

// Readiness reports whether the service can accept traffic. Degraded
// components still count as ready.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if status, _ := aggregate(c.Request.Context(), checker); status == component.StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
