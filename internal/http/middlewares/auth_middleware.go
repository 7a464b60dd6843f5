package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aprendefacil/backend/internal/auth"
	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/aprendefacil/backend/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserGetter
	prom  *observability.Prom
}

func NewAuthMiddleware(jwt TokenVerifier, users UserGetter, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, prom: prom}
}

// Protect walks the request through the whole gate: bearer extraction,
// token verification, user lookup, deactivation check. Every failure is
// terminal for the request; the distinct messages are part of the contract.
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.reject(c, "missing", "No autorizado - Token no proporcionado")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

		if raw == "" {
			m.reject(c, "missing", "No autorizado - Token no proporcionado")
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				m.reject(c, "expired", "Token expirado")
				return
			}

			m.reject(c, "invalid", "Token inválido")
			return
		}

		// fetch fresh on every request; a valid token does not outlive
		// the account state it points at
		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		u, err := m.users.GetByID(cctx, claims.UserID)

		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				m.reject(c, "user_missing", "Usuario no encontrado")
				return
			}

			m.reject(c, "invalid", "Error verificando token")
			return
		}

		if !u.IsActive {
			m.reject(c, "deactivated", "Usuario desactivado")
			return
		}

		m.prom.TokenChecksTotal.WithLabelValues("ok").Inc()

		c.Set(ctxUserKey, u)

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, result, message string) {
	m.prom.TokenChecksTotal.WithLabelValues(result).Inc()

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}
