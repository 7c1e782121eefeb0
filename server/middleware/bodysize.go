package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/feedback/util"
)

const defaultMaxBodySize = 1 << 20 // 1MB

// BodySizeLimit caps request bodies at maxSize (e.g. "1MB", "512KB").
// Reads beyond the limit fail, which binding reports as a 400.
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		}
		c.Next()
	}
}
