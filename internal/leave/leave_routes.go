package leave

import (
	"leave-portal/internal/domain"
	"leave-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the leave routes. onCreate runs before the create
// handler, typically the idempotency guard.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	guard middleware.SessionGuard,
	onCreate ...gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.RequireSession(guard))
	{
		leaves.GET("", handler.GetAll)
		leaves.GET("/summary", handler.Summary)
		leaves.GET("/:id", handler.GetByID)
		leaves.POST("", append(onCreate, handler.Create)...)
		leaves.PUT("/:id", handler.Update)
		leaves.PUT("/:id/approve", middleware.RequireRole(guard, domain.RoleManager), handler.Approve)
		leaves.PUT("/:id/reject", middleware.RequireRole(guard, domain.RoleManager), handler.Reject)
		leaves.DELETE("/:id", middleware.RequireRole(guard, domain.RoleAdmin), handler.Delete)
	}
}
