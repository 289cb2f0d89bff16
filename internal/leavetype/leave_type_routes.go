package leavetype

import (
	"leave-portal/internal/middleware"
	"leave-portal/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard middleware.SessionGuard, perms middleware.PermissionChecker) {
	canWrite := middleware.RequirePermission(perms, rbac.ResourceLeaveType, rbac.ActionWrite)

	types := r.Group("/leave-types")
	types.Use(middleware.RequireSession(guard))
	{
		types.GET("", handler.GetAll)
		types.GET("/:id", handler.GetByID)
		types.POST("", canWrite, handler.Create)
		types.PUT("/:id", canWrite, handler.Update)
		types.DELETE("/:id", canWrite, handler.Delete)
	}
}
