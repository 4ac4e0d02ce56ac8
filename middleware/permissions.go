package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/rbac"
)

// RequirePermission gates a route on the static role → permission mapping.
// The per-record region check still happens in the handler; this only
// answers "may this role perform this kind of action at all".
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user.ID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		if !rbac.RoleHasPermission(user.Role.RoleName, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}

		c.Next()
	}
}
