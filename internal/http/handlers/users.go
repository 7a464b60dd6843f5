package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type UsersHandler struct {
	store UserStore
}

func NewUsersHandler(store UserStore) *UsersHandler {
	return &UsersHandler{store: store}
}

// Me returns the record the protect middleware attached. The password hash
// never serializes thanks to the json tag on the domain type.
func (h *UsersHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "No autorizado - Token no proporcionado")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    u,
	})
}

// Count is admin-only; wired behind the role gate in the router.
func (h *UsersHandler) Count(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	n, err := h.store.Count(cctx)

	if err != nil {
		RespondInternal(ctx, "Error interno del servidor")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   n,
		"message": fmt.Sprintf("Hay %d usuarios en la base de datos", n),
	})
}
