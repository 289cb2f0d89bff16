package middleware

import (
	"time"

	"leave-portal/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger to the request context and
// writes one access line per request. It expects RequestID to run first.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		reqLogger := logger.With(
			zap.String("request_id", contextutil.GetRequestID(ctx)),
		)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		reqLogger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("user_email", c.GetString("user_email")),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
