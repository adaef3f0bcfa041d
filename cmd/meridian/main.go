package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-bms/meridian/internal/app"
	"github.com/meridian-bms/meridian/internal/authz"
	"github.com/meridian-bms/meridian/internal/platform/cache"
	"github.com/meridian-bms/meridian/internal/platform/db"
	"github.com/meridian-bms/meridian/internal/shared"
	"github.com/meridian-bms/meridian/internal/users"
	"github.com/meridian-bms/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	catalog := authz.NewCatalog(authz.NewPGCatalogRepository(pool))
	if err := authz.SeedDefaultPermissions(ctx, catalog); err != nil {
		logger.Error("seed permission catalog", slog.Any("error", err))
		os.Exit(1)
	}

	presets := authz.DefaultPresets()
	overrideRepo := authz.NewPGOverrideRepository(pool)
	effectiveCache := authz.NewEffectiveCache(redisClient, cfg.PermissionCacheTTL)
	resolver := authz.NewResolver(presets, overrideRepo)
	checker := authz.NewChecker(resolver, effectiveCache, logger)

	auditLogger := shared.NewAuditLogger(pool)
	authzService := authz.NewService(overrideRepo, effectiveCache, auditLogger, logger)
	authzMiddleware := authz.Middleware{Checker: checker, Logger: logger}
	usersRepo := users.NewRepository(pool)
	authzHandler := authz.NewHandler(logger, catalog, presets, authzService, checker, usersRepo, authzMiddleware)

	verifier := shared.NewPrincipalVerifier(cfg.AuthHeaderSecret)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Verifier:     verifier,
		AuthzHandler: authzHandler,
		JobHandler:   jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
