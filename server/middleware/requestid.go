package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/feedback/logger"
)

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-Id"

// RequestID assigns every request an ID, reusing the caller's when it is a
// well-formed UUID. The ID is echoed in the response and stored in the
// request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
