// Package main runs the event board HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventboard/backend/config"
	"github.com/eventboard/backend/internal/auth"
	"github.com/eventboard/backend/internal/events"
	"github.com/eventboard/backend/internal/middleware"
	"github.com/eventboard/backend/internal/notifications"
	"github.com/eventboard/backend/pkg/database"
	"github.com/eventboard/backend/pkg/queue"
	"github.com/eventboard/backend/pkg/redis"
	"github.com/eventboard/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if cfg.SeedDemo {
		if err := database.SeedDemo(ctx, pool, logger); err != nil {
			logger.Fatal("seed", zap.Error(err))
		}
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		// rate limiting and notification fan-out degrade without redis
		logger.Warn("redis unavailable, rate limiting and notifications disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	notifRepo := notifications.NewRepository(pool)
	notifHandler := notifications.NewHandler(notifRepo, logger)

	var notifier events.Notifier
	if rdb != nil {
		notifier = notifications.NewEnqueuer(queue.NewQueue(rdb.Client, logger), logger)
	}

	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, notifier, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	var loginLimiter gin.HandlerFunc
	if rdb != nil {
		loginLimiter = middleware.RateLimit(cfg.RateLimit, rdb.Client, logger)
	} else {
		loginLimiter = func(c *gin.Context) { c.Next() }
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", loginLimiter, authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/register", authHandler.Register)
	}

	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/events", eventHandler.List)
		api.POST("/events", eventHandler.Create)
		api.PATCH("/events/bulk", eventHandler.BulkUpdate)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.GET("/notifications", notifHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
