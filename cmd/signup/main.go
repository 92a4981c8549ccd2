package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/signup/internal/application/directory"
	"github.com/aescanero/signup/internal/application/monitor"
	"github.com/aescanero/signup/internal/config"
	eventsmemory "github.com/aescanero/signup/pkg/adapters/events/memory"
	eventsredis "github.com/aescanero/signup/pkg/adapters/events/redis"
	promcollector "github.com/aescanero/signup/pkg/adapters/metrics/prometheus"
	storagememory "github.com/aescanero/signup/pkg/adapters/storage/memory"
	storageredis "github.com/aescanero/signup/pkg/adapters/storage/redis"
	"github.com/aescanero/signup/pkg/api/grpc"
	"github.com/aescanero/signup/pkg/api/http"
	"github.com/aescanero/signup/pkg/api/websocket"
	"github.com/aescanero/signup/pkg/domain"
	"github.com/aescanero/signup/pkg/ports"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting activity sign-up service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("events_backend", cfg.EventsBackend))

	ctx := context.Background()

	// Initialize Redis client when a backend needs it
	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Load and validate the activity catalog
	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Fatal("failed to load activity catalog", zap.Error(err))
	}

	// Initialize adapters
	var store ports.ActivityStore
	switch cfg.StoreBackend {
	case config.BackendRedis:
		store = storageredis.NewActivityStore(redisClient, cfg.Redis.KeyPrefix, logger)
	default:
		store = storagememory.NewActivityStore()
	}
	if err := store.Seed(ctx, catalog); err != nil {
		logger.Fatal("failed to seed activity store", zap.Error(err))
	}

	var eventBus ports.EventBus
	switch cfg.EventsBackend {
	case config.BackendRedis:
		eventBus = eventsredis.NewStreamsEventBus(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.StreamMaxLen, logger)
	default:
		eventBus = eventsmemory.NewEventBus(logger)
	}

	metricsCollector := promcollector.NewCollector(prometheus.DefaultRegisterer)

	// Initialize application components
	directoryService := directory.NewService(
		store,
		eventBus,
		metricsCollector,
		logger,
		directory.Options{EnforceCapacity: cfg.Signup.EnforceCapacity},
	)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Addr:         cfg.GetHTTPAddr(),
		Directory:    directoryService,
		Logger:       logger,
		ReadTimeout:  cfg.Timeouts.HTTPRead,
		WriteTimeout: cfg.Timeouts.HTTPWrite,
	})
	httpServer.SetupWebSocket(websocket.NewHandler(directoryService, eventBus, logger))

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Addr:   cfg.GetGRPCAddr(),
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	rosterMonitor := monitor.NewRosterMonitor(directoryService, metricsCollector, grpcServer, cfg.Monitor.Interval, logger)
	rosterMonitor.Start()

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("activity sign-up service started",
		zap.String("http_addr", cfg.GetHTTPAddr()),
		zap.String("grpc_addr", cfg.GetGRPCAddr()),
		zap.Int("activities", len(catalog)),
		zap.Bool("enforce_capacity", cfg.Signup.EnforceCapacity))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	rosterMonitor.Stop()

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("activity sign-up service shut down complete")
}

// loadCatalog returns the configured catalog, falling back to the built-in one
func loadCatalog(cfg *config.Config) ([]domain.Activity, error) {
	catalog := directory.DefaultCatalog()
	if cfg.Signup.CatalogFile != "" {
		var err error
		catalog, err = directory.LoadCatalogFile(cfg.Signup.CatalogFile)
		if err != nil {
			return nil, err
		}
	}

	if err := directory.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return catalog, nil
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
