package middleware

import (
	"rewardgate/pkg/errutil"
	"rewardgate/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const retryAfterSeconds = "1"

// Error renders the last error attached by a handler as {success:false, error}.
// Errors that are not BaseError become a generic internal error.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		be := errutil.As(last.Err)

		if be.Code.HTTPStatus() >= 500 {
			logger.FromContext(c.Request.Context()).Error("request failed",
				zap.String("path", c.FullPath()),
				zap.Error(last.Err),
			)
		}

		if be.Code.Retryable() {
			c.Header("Retry-After", retryAfterSeconds)
		}
		c.AbortWithStatusJSON(be.Code.HTTPStatus(), be.JSON())
	}
}
