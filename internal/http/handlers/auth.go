package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/aprendefacil/backend/internal/observability"
	"github.com/aprendefacil/backend/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserStore is what the auth flow consumes from the credential store.
// The postgres and memory repos both satisfy it.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByIdentifier(ctx context.Context, value string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthHandler struct {
	store UserStore
	jwt   TokenIssuer
	prom  *observability.Prom
}

func NewAuthHandler(store UserStore, jwt TokenIssuer, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		store: store,
		jwt:   jwt,
		prom:  prom,
	}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=30,username"`
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=80"`
	Age       *int   `json:"age" binding:"omitempty,gte=0,lte=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	// Any one of the first three works as the lookup value; it is matched
	// against both the stored email and username.
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		h.prom.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// fast-path duplicate check; the unique indexes stay authoritative for
	// registrations racing on the same email/username
	exists, err := h.store.ExistsByEmailOrUsername(cctx, email, username)

	if err != nil {
		h.prom.RegistrationsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "No se pudo crear el usuario")
		return
	}

	if exists {
		h.prom.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		RespondBadRequest(ctx, "Email o username ya en uso")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.prom.RegistrationsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "No se pudo crear el usuario")
		return
	}

	now := time.Now().UTC()

	created, err := h.store.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Username:     username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			// lost the race; same answer as the fast path
			h.prom.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			RespondBadRequest(ctx, "Email o username ya en uso")
			return
		}

		h.prom.RegistrationsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "No se pudo crear el usuario")
		return
	}

	token, err := h.jwt.Issue(created.ID)

	if err != nil {
		h.prom.RegistrationsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "No se pudo generar el token")
		return
	}

	h.prom.RegistrationsTotal.WithLabelValues("created").Inc()

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created.Registered(),
		"token":   token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		h.prom.LoginsTotal.WithLabelValues("missing").Inc()
		return
	}

	lookup := firstNonEmpty(req.Identifier, req.Email, req.Username)

	if lookup == "" || req.Password == "" {
		h.prom.LoginsTotal.WithLabelValues("missing").Inc()
		RespondBadRequest(ctx, "Faltan datos requeridos")
		return
	}

	// short timeout for the DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.store.GetByIdentifier(cctx, lookup)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// same status and body as a wrong password: account existence
			// must not be observable from the response
			h.prom.LoginsTotal.WithLabelValues("rejected").Inc()
			RespondUnAuthorized(ctx, "Credenciales inválidas")
			return
		}

		h.prom.LoginsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "Error interno del servidor")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.prom.LoginsTotal.WithLabelValues("rejected").Inc()
		RespondUnAuthorized(ctx, "Credenciales inválidas")
		return
	}

	// Deactivation is not checked here on purpose: the credential check may
	// pass, but the protect middleware rejects deactivated users.

	token, err := h.jwt.Issue(foundUser.ID)

	if err != nil {
		h.prom.LoginsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "No se pudo generar el token")
		return
	}

	h.prom.LoginsTotal.WithLabelValues("ok").Inc()

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"data":    foundUser.Profile(),
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)

		if v != "" {
			return v
		}
	}

	return ""
}
