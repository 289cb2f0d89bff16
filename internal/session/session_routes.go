package session

import "github.com/gin-gonic/gin"

// StatusRoute is the countdown poll's key for activity tracking.
const StatusRoute = "GET /session"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/session", handler.Status)
	r.POST("/session/extend", handler.Extend)
}
