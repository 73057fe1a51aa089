package controllers

import (
	apperrors "storefront-service/errors"

	"github.com/gin-gonic/gin"
)

func sendResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, apperrors.Envelope{Success: true, Message: message, Data: data})
}

// fail hands err to apperrors.ErrorMiddleware, which renders the envelope.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
