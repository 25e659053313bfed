package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"socialsphere/internal/config"

	"github.com/redis/go-redis/v9"
)

// Open builds the Store selected by cfg.StoreDriver, wrapped with metrics and tracing.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	opts := Options{
		Namespace:  cfg.StoreNamespace,
		QuotaBytes: cfg.StoreQuotaBytes,
		MaxRetries: cfg.StoreMaxRetries,
	}

	var (
		store Store
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = NewMemoryStore(opts)
	case config.DriverRedis:
		var redisOpts *redis.Options
		redisOpts, err = ParseRedisAddr(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		store = NewRedisStore(redis.NewClient(redisOpts), opts)
	case config.DriverSQLite:
		store, err = OpenSQLite(cfg.SQLitePath, logger, opts)
	case config.DriverPostgres:
		store, err = OpenPostgres(cfg.PostgresDSN(), logger, opts)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s store unreachable: %w", cfg.StoreDriver, err)
	}

	logger.Info("store connected", slog.String("driver", cfg.StoreDriver), slog.String("namespace", cfg.StoreNamespace))
	return Instrument(store, cfg.StoreDriver), nil
}
