package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aprendefacil/backend/internal/auth"
	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/db"
	httpx "github.com/aprendefacil/backend/internal/http"
	"github.com/aprendefacil/backend/internal/observability"
	"github.com/aprendefacil/backend/internal/repo/observed"
	"github.com/aprendefacil/backend/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	cfg := config.Load()

	// a missing signing secret means every authenticated route would fail;
	// refuse to start instead
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	logger := observability.NewLogger(cfg.Env)
	// the request logger and everything else share it through slog.Default
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	// tracing is optional; only wired when an OTLP endpoint is configured
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "aprendefacil-api", cfg.Env, cfg.OTLPEndpoint)

		if err != nil {
			logger.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		logger.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	users := observed.NewUsers(postgres.NewUsersRepo(pool), prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	ping := func() error {
		pctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return pool.Ping(pctx)
	}

	router := httpx.NewRouter(httpx.RouterDeps{
		Store:   users,
		JWT:     jwtManager,
		Ping:    ping,
		Prom:    prom,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Cfg:     cfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(sctx)

		if err != nil {
			logger.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		logger.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		logger.Error("shutdown timed out")
	}
}
