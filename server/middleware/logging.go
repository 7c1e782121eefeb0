package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/feedback/logger"
)

var probePaths = map[string]bool{
	"/health": true,
	"/alive":  true,
	"/ready":  true,
}

// RequestLogger logs each completed request with its method, route, status
// and duration. Probe endpoints are skipped. Headers are never logged, so
// bearer tokens do not reach the log.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		if probePaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := map[string]any{
			logger.FieldMethod:   c.Request.Method,
			logger.FieldPath:     route,
			logger.FieldStatus:   c.Writer.Status(),
			logger.FieldDuration: duration.Milliseconds(),
		}
		if id, err := CurrentIdentity(c); err == nil {
			fields[logger.FieldUserID] = id.ID
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}

		logByStatus(log.WithContext(c.Request.Context()), fields, c.Writer.Status())
	}
}

// logByStatus picks the level from the response status class.
func logByStatus(log *logger.Logger, fields map[string]any, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Info("request completed", fields)
	}
}
