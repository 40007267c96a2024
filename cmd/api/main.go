package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"todosync/internal/adapter/database/cached"
	"todosync/internal/adapter/database/memory"
	"todosync/internal/adapter/database/postgres"
	pgrepository "todosync/internal/adapter/database/postgres/repository"
	"todosync/internal/adapter/database/redis"
	"todosync/internal/adapter/database/sqlite"
	sqliterepository "todosync/internal/adapter/database/sqlite/repository"
	"todosync/internal/adapter/generation"
	httpadapter "todosync/internal/adapter/http"
	"todosync/internal/adapter/identity"
	"todosync/internal/adapter/notification"
	teladapter "todosync/internal/adapter/telemetry"
	"todosync/internal/core/port"
	"todosync/pkg/config"
)

const (
	serviceName     = "todosync"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	logger, err := config.NewLokiLogger(serviceName, cfg.LokiURL, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	tel, err := teladapter.NewContainer(ctx, teladapter.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	tel.StartMetricsServer()
	metrics := tel.AppMetrics
	probe := tel.NewTelemetryProbe()

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	metrics.StartSystemMetrics(metricsCtx)

	store, closeStore, err := openStore(ctx, cfg, probe)
	if err != nil {
		logger.Error(ctx, "Failed to open storage", zap.Error(err))
		os.Exit(1)
	}

	cache, err := openCache(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Failed to open cache", zap.Error(err))
		os.Exit(1)
	}

	outbound := &http.Client{
		Timeout:   60 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	generator, err := generation.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, generation.WithHTTPClient(outbound))
	if err != nil {
		logger.Error(ctx, "Failed to create summary generator", zap.Error(err))
		os.Exit(1)
	}

	container := httpadapter.NewContainer(httpadapter.Dependencies{
		TodoRepo: cached.NewTodoRepository(store, cache, cfg.CacheTTL, logger.Logger.Logger, metrics),
		Verifier: identity.NewJWTVerifier(identity.Config{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   30 * time.Second,
		}),
		Generator: generator,
		Notifier:  notification.NewSlackNotifier(cfg.SlackWebhookURL, outbound),
		Telemetry: probe,
		Metrics:   metrics,
		Logger:    logger,
	})

	server := httpadapter.NewServer(httpadapter.NewRouter(container, metrics, logger, cfg), logger, cfg)
	serveErr := server.Start()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			logger.Info(ctx, "Shutting down gracefully...")
			return server.Shutdown(ctx)
		},
		"storage": func(ctx context.Context) error {
			return closeStore()
		},
		"cache": func(ctx context.Context) error {
			return cache.Close()
		},
		"telemetry": func(ctx context.Context) error {
			stopMetrics()
			return tel.Shutdown(ctx)
		},
	})

	go func() {
		if err, ok := <-serveErr; ok && err != nil {
			logger.Error(ctx, "HTTP server stopped", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
	}()

	code := <-wait
	logger.Sync()
	os.Exit(code)
}

// openStore picks Postgres when DATABASE_URL is set and the sqlite file otherwise.
func openStore(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) (port.TodoRepository, func() error, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		return pgrepository.NewTodoRepository(db, probe), func() error { db.Close(); return nil }, nil
	}

	db, err := sqlite.NewDB(sqlite.Options{Path: cfg.DatabasePath, LogQueries: !cfg.IsProduction()})
	if err != nil {
		return nil, nil, err
	}

	return sqliterepository.NewTodoRepository(db, probe), db.Close, nil
}

// openCache uses Redis when REDIS_ADDR is set and an in-process cache otherwise.
func openCache(ctx context.Context, cfg *config.AppConfig) (port.CacheRepository, error) {
	if cfg.RedisAddr == "" {
		return memory.NewMemoryRepository(cfg.CacheTTL), nil
	}

	return redis.NewRedisRepository(ctx, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   serviceName + ":",
	})
}
