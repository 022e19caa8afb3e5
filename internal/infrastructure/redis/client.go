package redis

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amankumar-in/univance/internal/config"
)

const pingTimeout = 5 * time.Second

// options parses the URL and layers the explicit password, db and pool size over it. The
// connection is named after the service so CLIENT LIST shows who holds it.
func options(service string, cfg config.RedisConfig) (*goRedis.Options, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.ClientName = service
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	return opts, nil
}

// NewClient connects the Redis client backing the service's outbox delivery log.
func NewClient(ctx context.Context, service string, cfg config.RedisConfig, logger *zap.Logger) (*goRedis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := options(service, cfg)
	if err != nil {
		return nil, err
	}
	client := goRedis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.Info("connected to redis",
		zap.String("service", service),
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB))
	return client, nil
}
