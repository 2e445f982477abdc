package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/config"
	"compliancehub/internal/database"
	"compliancehub/internal/handlers"
	"compliancehub/internal/realtime"
	"compliancehub/internal/tracking"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting compliance hub",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Connect(cfg.GetDatabaseDSN(), cfg.Database.PoolSize, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if cfg.Seed.Enabled {
		if err := database.Seed(db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, logger); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unreachable, continuing without cache and fan-out", zap.Error(err))
			rdb = nil
		}
		cancel()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(rdb, logger)
	go hub.Run(ctx)
	if rdb != nil {
		go hub.SubscribeToRedis(ctx)
	}

	profileRepo := database.NewProfileRepository(db, logger)
	policyRepo := database.NewPolicyRepository(db, logger)
	taskRepo := database.NewTaskRepository(db, logger)
	reportRepo := database.NewReportRepository(db, logger)

	var trackingCache tracking.Cache
	if rdb != nil {
		trackingCache = tracking.NewRedisCache(rdb)
	}
	tracker := tracking.NewService(reportRepo, trackingCache, cfg.Tracking.CacheTTL, logger)
	sessions := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	auditLogger := audit.NewLogger(db, logger)

	handler := handlers.NewHandler(profileRepo, policyRepo, taskRepo, reportRepo,
		tracker, sessions, auditLogger, hub, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	logger.Info("Stopped")
}
