package auth

import (
	"leave-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		auth.POST("/register", middleware.RateLimitByIP(0.1, 3), handler.Register)
		auth.POST("/logout", handler.Logout)
	}
}
