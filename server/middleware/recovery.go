package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/feedback/errors"
	"github.com/kbukum/feedback/logger"
)

// Recovery turns a handler panic into a 500 response and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithContext(c.Request.Context()).Error("panic recovered", map[string]any{
					logger.FieldError:  fmt.Sprintf("%v", rec),
					"stack":            string(debug.Stack()),
					logger.FieldMethod: c.Request.Method,
					logger.FieldPath:   c.Request.URL.Path,
				})
				abortWithError(c, apperrors.Internal(fmt.Errorf("panic: %v", rec)))
			}
		}()
		c.Next()
	}
}
