package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/amankumar-in/univance/internal/config"
)

const pingTimeout = 5 * time.Second

// poolConfig turns the service's database settings into a pgx pool config. Connections carry
// the service name as application_name so pg_stat_activity tells the services apart.
func poolConfig(service string, cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is empty")
	}
	pgxCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if service != "" {
		pgxCfg.ConnConfig.RuntimeParams["application_name"] = service
	}
	if cfg.MaxOpenConns > 0 {
		pgxCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pgxCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if pgxCfg.MinConns > pgxCfg.MaxConns {
		pgxCfg.MinConns = pgxCfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		pgxCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pgxCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		pgxCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	return pgxCfg, nil
}

// NewPool opens the service's pool and pings it before handing it out.
func NewPool(ctx context.Context, service string, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pgxCfg, err := poolConfig(service, cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping %s/%s: %w", pgxCfg.ConnConfig.Host, pgxCfg.ConnConfig.Database, err)
	}

	logger.Info("connected to postgres",
		zap.String("service", service),
		zap.String("host", pgxCfg.ConnConfig.Host),
		zap.String("db", pgxCfg.ConnConfig.Database),
		zap.Int32("min_conns", pgxCfg.MinConns),
		zap.Int32("max_conns", pgxCfg.MaxConns))
	return pool, nil
}

// Close releases the pool, reporting how many connections were still open.
func Close(pool *pgxpool.Pool, logger *zap.Logger) {
	if pool == nil {
		return
	}
	open := pool.Stat().TotalConns()
	pool.Close()
	if logger != nil {
		logger.Info("postgres pool closed", zap.Int32("open_conns", open))
	}
}
