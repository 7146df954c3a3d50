package bootstrap

import (
	"fmt"

	"github.com/blix057/afdver-Bot/internal/config"
	"github.com/blix057/afdver-Bot/internal/logger"
	"github.com/blix057/afdver-Bot/internal/ratelimit"
)

// SetupLimiter builds the admission limiter over the configured backing
// store. The returned close function releases the Redis client when that
// backend is selected and is a no-op otherwise.
func SetupLimiter(cfg *config.Config, log logger.Logger) (*ratelimit.Limiter, func(), error) {
	if cfg.RateLimit.Backend == config.BackendRedis {
		return setupRedisLimiter(cfg, log)
	}

	log.Info("Rate limiter using in-memory store",
		logger.Int("quota", cfg.RateLimit.MaxPerWindow),
		logger.Duration("window", cfg.RateLimit.Window),
	)

	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window)
	return limiter, func() {}, nil
}

func setupRedisLimiter(cfg *config.Config, log logger.Logger) (*ratelimit.Limiter, func(), error) {
	client, err := ratelimit.NewRedisClient(ratelimit.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis client: %w", err)
	}

	log.Info("Rate limiter using Redis store",
		logger.String("address", cfg.Redis.Address),
		logger.Int("quota", cfg.RateLimit.MaxPerWindow),
		logger.Duration("window", cfg.RateLimit.Window),
	)

	limiter := ratelimit.New(ratelimit.NewRedisStore(client), cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window)
	closer := func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("Failed to close Redis client", logger.Error(closeErr))
		}
	}
	return limiter, closer, nil
}
