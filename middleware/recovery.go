package middleware

import (
	"fmt"

	apperrors "storefront-service/errors"
	"storefront-service/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into the standard 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c, "Recovered from panic", fmt.Errorf("%v", recovered))
		apperrors.HandleError(c.Writer, apperrors.ErrInternalServer)
		c.Abort()
	})
}
