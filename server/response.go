package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/feedback/errors"
)

// RespondWithError writes err's client representation. Errors that are not
// an *apperrors.AppError become a generic 500; their text is not exposed.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 with data as the bare JSON body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 with an empty body.
func RespondCreated(c *gin.Context) {
	c.Status(http.StatusCreated)
}
