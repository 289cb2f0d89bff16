package middleware

import (
	"fmt"
	"net/http"
	"time"

	"leave-portal/internal/shared/contextutil"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	CodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// Idempotency rejects a second POST carrying the same Idempotency-Key while
// the first is in flight or for ttl after it succeeded. A failed first
// attempt releases the key so the form can be submitted again.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, nil)
		key := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString("user_email"), idempKey)

		isNew, err := rdb.SetNX(ctx, key, "locked", ttl).Result()
		if err != nil {
			// without redis the request goes through unguarded
			log.Warn("idempotency lock unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, CodeDuplicateRequest, "This request is already being processed", nil)
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := rdb.Del(ctx, key).Err(); err != nil {
				log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
