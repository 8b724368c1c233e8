package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace_auth/internal/config"
	"marketplace_auth/internal/handler"
	"marketplace_auth/internal/logger"
	"marketplace_auth/internal/middleware"
	"marketplace_auth/internal/repository"
	"marketplace_auth/internal/service"
	"marketplace_auth/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		appLog.Error("failed to load DB config", "error", err)
		os.Exit(1)
	}
	dbPool, err := config.ConnectDB(ctx, dbCfg, appLog)
	if err != nil {
		appLog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := config.AutoMigrate(dbPool, appLog); err != nil {
		appLog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		appLog.Warn("JWT_SECRET is not set; login will fail until it is configured")
	}

	// --- Wiring ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTTTL)
	userRepo := repository.NewUserRepository(dbPool)
	authService := service.NewAuthService(userRepo, jwtUtil, appLog)

	authHandler := handler.NewAuthHandler(authService, appLog)
	userHandler := handler.NewUserHandler(userRepo, appLog)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	authHandler.RegisterAuthRoutes(api)
	userHandler.RegisterUserRoutes(api, middleware.JWTAuthMiddleware(jwtUtil), middleware.AdminMiddleware())
	router.GET("/health", handler.Health(dbPool))

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	appLog.Info("server exited")
}
