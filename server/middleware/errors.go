package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/feedback/errors"
)

// abortWithError stops the chain and writes err's client representation.
func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
