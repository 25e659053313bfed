// Command main is the entry point for the SocialSphere API server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialsphere/internal/ai"
	"socialsphere/internal/config"
	"socialsphere/internal/observability"
	"socialsphere/internal/server"
	"socialsphere/internal/storage"

	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.Env)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "socialsphere-api",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg, logger.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	assistant, err := ai.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create AI gateway: %v", err)
	}

	// Shared rate limit counters only make sense when Redis is already deployed
	var redisClient *redis.Client
	if cfg.StoreDriver == config.DriverRedis {
		opts, err := storage.ParseRedisAddr(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis address: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}

	srv := server.NewServer(cfg, store, assistant, redisClient)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
