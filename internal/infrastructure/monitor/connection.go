package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	"github.com/amankumar-in/univance/internal/metrics"
)

type Monitor struct {
	pg     *pgxpool.Pool
	redis  *redislib.Client
	outbox *outbox.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, box *outbox.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		outbox:   box,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline gates outbox deliveries. Retries are only safe while the Redis delivery log answers.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Redis
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	outboxOK, pending, dead := m.checkOutbox()
	status := Status{
		PostgreSQL:    m.checkPostgres(),
		Redis:         m.checkRedis(),
		Outbox:        outboxOK,
		OutboxPending: pending,
		OutboxDead:    dead,
		LastCheck:     time.Now(),
	}
	metrics.SetUp("postgresql", status.PostgreSQL)
	metrics.SetUp("redis", status.Redis)
	metrics.SetUp("outbox", status.Outbox)
	metrics.OutboxDead.Set(float64(dead))
	if !status.Healthy() {
		m.logger.Warn("dependency check failed",
			zap.Bool("postgresql", status.PostgreSQL),
			zap.Bool("redis", status.Redis),
			zap.Bool("outbox", status.Outbox))
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkPostgres() bool {
	if m.pg == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.pg.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkOutbox() (bool, int, int) {
	if m.outbox == nil {
		return false, 0, 0
	}
	pending, err := m.outbox.Len()
	if err != nil {
		m.logger.Warn("outbox size check failed", zap.Error(err))
		return false, 0, 0
	}
	dead, err := m.outbox.Dead()
	if err != nil {
		m.logger.Warn("outbox dead letter check failed", zap.Error(err))
		return false, pending, 0
	}
	return true, pending, dead
}
