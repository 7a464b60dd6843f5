package http

import (
	"fmt"
	"net/http"

	"github.com/aprendefacil/backend/internal/auth"
	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/aprendefacil/backend/internal/http/handlers"
	"github.com/aprendefacil/backend/internal/http/middlewares"
	"github.com/aprendefacil/backend/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterDeps carries everything the router wires together. The store is an
// interface so tests can run the full route table against the memory repo.
type RouterDeps struct {
	Store   handlers.UserStore
	JWT     *auth.Manager
	Ping    func() error
	Prom    *observability.Prom
	Metrics http.Handler
	Cfg     config.Config
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidators()

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())

	if len(d.Cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	}

	if d.Cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))
	}

	r.Use(otelgin.Middleware("aprendefacil-api"))

	if d.Prom == nil {
		// tests may build a router without wiring metrics
		d.Prom = observability.NewProm(prometheus.NewRegistry())
	}

	r.Use(d.Prom.GinHandleMiddleware())

	// health + metrics

	health := handlers.NewHealthHandler(d.Ping, d.Cfg.Env)
	r.GET("/", health.Root)
	r.GET("/health", health.Health)
	r.GET("/api/health", health.APIHealth)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	// auth flow

	authHandler := handlers.NewAuthHandler(d.Store, d.JWT, d.Prom)
	usersHandler := handlers.NewUsersHandler(d.Store)
	authMW := middlewares.NewAuthMiddleware(d.JWT, d.Store, d.Prom)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	api.POST("/users", authHandler.Register)
	api.POST("/auth/register", authHandler.Register) // historical alias
	api.POST("/auth/login", authHandler.Login)

	api.GET("/users/me", authMW.Protect(), usersHandler.Me)
	api.GET("/users/count", authMW.Protect(), authMW.RequireRoles(user.RoleAdmin), usersHandler.Count)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("Ruta %s %s no encontrada", ctx.Request.Method, ctx.Request.URL.Path),
		})
	})

	return r
}
