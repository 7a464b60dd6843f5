package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aprendefacil/backend/internal/auth"
	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/aprendefacil/backend/internal/http/middlewares"
	"github.com/aprendefacil/backend/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	getByIDFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	return f.getByIDFn(ctx, id)
}

func activeBob() user.User {
	return user.User{
		ID:       "id-bob",
		Username: "bob1",
		Email:    "bob@x.com",
		Role:     user.RoleStudent,
		IsActive: true,
	}
}

// protectedRouter mounts Protect in front of a handler echoing the
// identity the middleware attached.
func protectedRouter(jwt middlewares.TokenVerifier, users middlewares.UserGetter) *gin.Engine {
	m := middlewares.NewAuthMiddleware(jwt, users, observability.NewProm(prometheus.NewRegistry()))

	r := gin.New()
	r.GET("/me", m.Protect(), func(c *gin.Context) {
		u, _ := middlewares.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
	})

	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestProtect(t *testing.T) {
	jwt := auth.NewManager("test-secret", time.Hour)

	token, err := jwt.Issue("id-bob")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	expired, err := auth.NewManager("test-secret", -time.Minute).Issue("id-bob")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	users := &fakeUsers{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			if id == "id-bob" {
				return activeBob(), nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		users          middlewares.UserGetter
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + token,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "no header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "No autorizado - Token no proporcionado",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic " + token,
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "No autorizado - Token no proporcionado",
		},
		{
			name:           "empty bearer",
			authHeader:     "Bearer   ",
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "No autorizado - Token no proporcionado",
		},
		{
			name:           "corrupted token",
			authHeader:     "Bearer " + token + "x",
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "Token inválido",
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + expired,
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "Token expirado",
		},
		{
			name:       "token for a deleted user",
			authHeader: "Bearer " + token,
			users: &fakeUsers{
				getByIDFn: func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				},
			},
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "Usuario no encontrado",
		},
		{
			name:       "token for a deactivated user",
			authHeader: "Bearer " + token,
			users: &fakeUsers{
				getByIDFn: func(ctx context.Context, id string) (user.User, error) {
					u := activeBob()
					u.IsActive = false
					return u, nil
				},
			},
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "Usuario desactivado",
		},
		{
			name:       "store failure during the lookup",
			authHeader: "Bearer " + token,
			users: &fakeUsers{
				getByIDFn: func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, errors.New("connection refused")
				},
			},
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "Error verificando token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.users
			if store == nil {
				store = users
			}

			r := protectedRouter(jwt, store)
			w := get(r, "/me", tt.authHeader)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			var resp map[string]any

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json response: %v", err)
			}

			if tt.wantStatusCode == http.StatusOK {
				data, ok := resp["data"].(map[string]any)
				if !ok {
					t.Fatalf("missing data object: %s", w.Body.String())
				}

				if data["id"] != "id-bob" {
					t.Errorf("attached user id = %v", data["id"])
				}
			} else if resp["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp["message"], tt.wantMessage)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	jwt := auth.NewManager("test-secret", time.Hour)

	token, err := jwt.Issue("id-bob")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tests := []struct {
		name           string
		role           string
		allowed        []string
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "role allowed",
			role:           user.RoleAdmin,
			allowed:        []string{user.RoleAdmin},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "one of several roles allowed",
			role:           user.RoleTeacher,
			allowed:        []string{user.RoleAdmin, user.RoleTeacher},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "role rejected",
			role:           user.RoleStudent,
			allowed:        []string{user.RoleAdmin},
			wantStatusCode: http.StatusForbidden,
			wantMessage:    "El rol student no tiene acceso a esta ruta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{
				getByIDFn: func(ctx context.Context, id string) (user.User, error) {
					u := activeBob()
					u.Role = tt.role
					return u, nil
				},
			}

			m := middlewares.NewAuthMiddleware(jwt, users, observability.NewProm(prometheus.NewRegistry()))

			r := gin.New()
			r.GET("/admin", m.Protect(), m.RequireRoles(tt.allowed...), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"success": true})
			})

			w := get(r, "/admin", "Bearer "+token)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantMessage != "" {
				var resp map[string]any

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("invalid json response: %v", err)
				}

				if resp["message"] != tt.wantMessage {
					t.Errorf("message = %q, want %q", resp["message"], tt.wantMessage)
				}
			}
		})
	}
}

// RequireRoles mounted without Protect has no identity to judge and
// must fail closed.
func TestRequireRoles_WithoutProtect(t *testing.T) {
	m := middlewares.NewAuthMiddleware(nil, nil, observability.NewProm(prometheus.NewRegistry()))

	r := gin.New()
	r.GET("/admin", m.RequireRoles(user.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := get(r, "/admin", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
