package middleware

import (
	"circles/internal/transport/httpdto"
	"circles/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders errors handlers attached with c.Error when they did
// not write a response themselves.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := httpdto.ErrorResponseFor(err)
		if l != nil && status >= 500 {
			l.WithContext(c.Request.Context()).Logger.Error("request error", zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, body)
	}
}
