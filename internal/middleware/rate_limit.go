package middleware

import (
	"net/http"
	"sync"

	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const CodeTooManyRequests = "TOO_MANY_REQUESTS"

type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}
	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Error(c, http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
