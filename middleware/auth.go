package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sharath018/welfare-management-backend/config"
	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
)

// scopeResolver is set once during route setup. Handlers reach it through
// CanAccessRecord; a nil resolver denies everything except global scopes.
var scopeResolver *rbac.Resolver

func SetScopeResolver(r *rbac.Resolver) {
	scopeResolver = r
}

// AuthMiddleware validates the bearer token, loads the user, and resolves
// the user's scope into the request context.
func AuthMiddleware(cfg *config.Config, authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTAccessSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id missing in token"})
			return
		}

		// The user record (role, scope, status) is re-read on every request
		// so scope edits and deactivation take effect without re-login.
		user, err := authSvc.GetUserByID(uint(userIDFloat))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if user.Status != "active" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is not active"})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("claims", claims)

		if scopeResolver != nil {
			c.Set("scope", scopeResolver.ResolveScope(c.Request.Context(), user))
		} else {
			c.Set("scope", rbac.ScopeSet{
				RegionIDs:  map[uint]struct{}{},
				ProjectIDs: map[uint]struct{}{},
				SchemeIDs:  map[uint]struct{}{},
			})
		}

		c.Next()
	}
}

// GetUserFromContext returns the authenticated user. Must only be called
// behind AuthMiddleware.
func GetUserFromContext(c *gin.Context) auth.User {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(auth.User); ok {
			return user
		}
	}
	return auth.User{}
}

// GetScopeFromContext returns the caller's resolved scope. An absent scope
// is an empty, non-global one: it matches nothing.
func GetScopeFromContext(c *gin.Context) rbac.ScopeSet {
	if v, exists := c.Get("scope"); exists {
		if scope, ok := v.(rbac.ScopeSet); ok {
			return scope
		}
	}
	return rbac.ScopeSet{
		RegionIDs:  map[uint]struct{}{},
		ProjectIDs: map[uint]struct{}{},
		SchemeIDs:  map[uint]struct{}{},
	}
}

// CanAccessRecord reports whether the caller's scope covers the record
func CanAccessRecord(c *gin.Context, record rbac.RecordRef) bool {
	user := GetUserFromContext(c)
	if user.ID == 0 {
		return false
	}
	if scopeResolver == nil {
		return GetScopeFromContext(c).IsGlobal
	}
	return scopeResolver.CanAccess(c.Request.Context(), user, record)
}
