package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

// respondError translates a service error into an HTTP status and a
// client-safe message. Untyped errors stay opaque.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{
			"message": appErr.Message,
			"code":    appErr.Code,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
