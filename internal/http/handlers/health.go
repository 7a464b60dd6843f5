package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

type HealthHandler struct {
	ping func() error
	env  string
}

func NewHealthHandler(ping func() error, env string) *HealthHandler {
	return &HealthHandler{ping: ping, env: env}
}

// Root is a cheap proxy-routing check.
func (h *HealthHandler) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"message":   "Backend Aprende-Fácil activo",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"env":       h.env,
	})
}

// Health reports liveness plus the database ping.
func (h *HealthHandler) Health(ctx *gin.Context) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "La base de datos no está disponible",
			})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Backend funcionando correctamente",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
	})
}

func (h *HealthHandler) APIHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "API funcionando correctamente",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}
