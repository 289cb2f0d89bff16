package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the policy queries. r must already require a session.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.GET("/permissions", handler.Permissions)
		group.POST("/enforce", handler.Enforce)
	}
}
