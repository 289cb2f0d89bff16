package middleware

import (
	"leave-portal/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or mints one, and propagates it
// so outgoing API calls carry the same id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}

		c.Set("request_id", rid)

		ctx := contextutil.WithRequestID(c.Request.Context(), rid)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}
