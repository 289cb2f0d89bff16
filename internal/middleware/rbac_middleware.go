package middleware

import (
	"leave-portal/internal/domain"

	"github.com/gin-gonic/gin"
)

// PermissionChecker is satisfied by rbac.Service.
type PermissionChecker interface {
	Permits(role domain.Role, resource, action string) bool
}

// RequirePermission checks resource:action for the role RequireSession put
// on the context.
func RequirePermission(checker PermissionChecker, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := domain.ParseRole(c.GetString("role"))
		if !checker.Permits(role, resource, action) {
			abortForbidden(c, "You do not have permission to access this resource", gin.H{
				"required": resource + ":" + action,
				"role":     role,
				"actions":  deniedActions,
			})
			return
		}
		c.Next()
	}
}
