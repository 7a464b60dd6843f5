package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles is a pure role predicate over the identity Protect attached.
// It must be mounted after Protect.
func (m *AuthMiddleware) RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "No autorizado - Token no proporcionado",
			})
			return
		}

		for _, role := range allowed {
			if u.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": fmt.Sprintf("El rol %s no tiene acceso a esta ruta", u.Role),
		})
	}
}
