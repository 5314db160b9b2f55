package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hirely/internal/auth"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验访问令牌并将 userID 与角色注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil || claims.TokenType != "access" {
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// UserIDFromContext 取出中间件注入的用户 ID。
func UserIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// UserRoleFromContext 取出中间件注入的角色声明。
func UserRoleFromContext(c *gin.Context) string {
	if value, ok := c.Get(userRoleKey); ok {
		if role, ok := value.(string); ok {
			return role
		}
	}
	return ""
}
