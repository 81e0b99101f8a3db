// Package store provides storage backend initialization for the autoscaler.
//
// It acts as a factory for storage.Store implementations based on the
// autoscaler configuration:
//
//   - Memory: in-memory storage (default), suitable for single-instance
//     deployments and development. Data is lost on restart.
//
//   - Redis: snapshots survive controller restarts and can be read by
//     external tooling. Connection parameters come from the Redis* config
//     fields.
//
// Initialization is fail-fast: connectivity to the backend is verified at
// startup and the process exits immediately if it is unavailable, so the
// autoscaler never runs with a broken storage configuration.
package store

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/nexslice/scalecast/cmd/autoscaler/config"
	"github.com/nexslice/scalecast/pkg/storage"
)

// New creates and initializes a storage backend based on the provided
// configuration. Calls os.Exit(1) on initialization failure, never returns
// nil.
func New(cfg *config.Config, logger *slog.Logger) storage.Store {
	switch cfg.Storage {
	case "redis":
		logger.Info("initializing redis storage",
			"addr", cfg.RedisAddr,
			"db", cfg.RedisDB,
			"ttl", cfg.RedisTTL,
		)
		redisStore, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisStore.Ping(ctx); err != nil {
			logger.Error("redis health check failed", "error", err)
			os.Exit(1)
		}
		logger.Info("redis storage initialized successfully")

		return redisStore

	case "memory":
		logger.Info("initializing in-memory storage")
		return storage.NewMemoryStore()

	default:
		logger.Error("invalid storage type", "storage", cfg.Storage)
		os.Exit(1)
	}

	return nil
}
