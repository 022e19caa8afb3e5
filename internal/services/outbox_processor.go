package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	"github.com/amankumar-in/univance/internal/metrics"
	"github.com/amankumar-in/univance/repository"
)

// minDrainInterval is the finest resolution of the drain schedule.
const minDrainInterval = time.Second

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// DeliveryFunc performs one downstream call for an outbox item.
type DeliveryFunc func(ctx context.Context, item outbox.Item) error

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval       time.Duration
	BatchSize      int
	MaxRetries     int
	DeadRetention  time.Duration
	DeliverTimeout time.Duration
}

// OutboxProcessor delivers downstream calls, parking failures in the outbox until a later drain
// succeeds or the retry budget is spent.
type OutboxProcessor struct {
	store     *outbox.Store
	monitor   ConnectionHealth
	delivered repository.DeliveryLog
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       ProcessorConfig

	mu       sync.RWMutex
	handlers map[string]DeliveryFunc
}

func NewOutboxProcessor(
	store *outbox.Store,
	monitor ConnectionHealth,
	delivered repository.DeliveryLog,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Interval < minDrainInterval {
		cfg.Interval = minDrainInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.DeadRetention <= 0 {
		cfg.DeadRetention = 24 * time.Hour
	}
	if cfg.DeliverTimeout <= 0 {
		cfg.DeliverTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &OutboxProcessor{
		store:     store,
		monitor:   monitor,
		delivered: delivered,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
		handlers:  make(map[string]DeliveryFunc),
	}

	p.schedule("@every "+cfg.Interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := p.Drain(ctx); err != nil {
			p.logger.Error("outbox drain failed", zap.Error(err))
		}
	})
	p.schedule("@hourly", func() {
		purged, err := p.store.PurgeDead(time.Now().Add(-cfg.DeadRetention))
		if err != nil {
			p.logger.Warn("dead letter purge failed", zap.Error(err))
			return
		}
		if purged > 0 {
			p.logger.Info("dead letters purged", zap.Int("count", purged))
		}
	})

	return p
}

func (p *OutboxProcessor) schedule(spec string, job func()) {
	if _, err := p.cron.AddFunc(spec, job); err != nil {
		p.logger.Error("outbox job not scheduled", zap.String("schedule", spec), zap.Error(err))
	}
}

// Handle registers the delivery function for an item kind.
func (p *OutboxProcessor) Handle(kind string, fn DeliveryFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[kind] = fn
}

// Start launches the cron scheduler.
func (p *OutboxProcessor) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("outbox processor started")
}

// Stop gracefully stops the scheduler.
func (p *OutboxProcessor) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("outbox processor stopped")
}

// Submit attempts the delivery immediately and falls back to persisting it.
// Items whose key was already delivered are dropped.
func (p *OutboxProcessor) Submit(ctx context.Context, item outbox.Item) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("outbox processor not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if p.alreadyDelivered(ctx, item) {
		metrics.OutboxDeliveries.WithLabelValues(item.Kind, "skipped").Inc()
		return nil
	}

	if p.monitor == nil || p.monitor.IsOnline() {
		err := p.deliver(ctx, item)
		if err == nil {
			p.markDelivered(ctx, item)
			metrics.OutboxDeliveries.WithLabelValues(item.Kind, "delivered").Inc()
			return nil
		}
		p.logger.Warn("immediate delivery failed, queueing",
			zap.String("kind", item.Kind),
			zap.String("key", item.Key),
			zap.Error(err))
	}

	queued, err := p.store.Enqueue(item)
	if err != nil {
		return err
	}
	if !queued {
		p.logger.Debug("outbox item already queued", zap.String("key", item.Key))
		return nil
	}
	metrics.OutboxDeliveries.WithLabelValues(item.Kind, "queued").Inc()
	p.updateGauge()
	return nil
}

// Drain delivers queued items synchronously.
func (p *OutboxProcessor) Drain(ctx context.Context) error {
	if p == nil || p.store == nil {
		return nil
	}
	if p.monitor != nil && !p.monitor.IsOnline() {
		p.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := p.store.Peek(p.cfg.BatchSize)
	if err != nil {
		return err
	}
	defer p.updateGauge()

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.alreadyDelivered(ctx, item) {
			metrics.OutboxDeliveries.WithLabelValues(item.Kind, "skipped").Inc()
			if err := p.store.Ack(item); err != nil {
				p.logger.Warn("failed to ack duplicate outbox item", zap.Error(err))
			}
			continue
		}

		if err := p.deliver(ctx, item); err != nil {
			p.logger.Error("failed to deliver outbox item",
				zap.String("item_id", item.ID),
				zap.String("kind", item.Kind),
				zap.Int("attempts", item.Attempts+1),
				zap.Error(err))

			if item.Attempts+1 >= p.cfg.MaxRetries {
				p.logger.Warn("burying outbox item (max retries reached)", zap.String("item_id", item.ID))
				metrics.OutboxDeliveries.WithLabelValues(item.Kind, "dead").Inc()
				if err := p.store.Bury(item, err); err != nil {
					p.logger.Error("failed to bury outbox item", zap.Error(err))
				}
				continue
			}
			metrics.OutboxDeliveries.WithLabelValues(item.Kind, "retried").Inc()
			if err := p.store.Retry(item, err); err != nil {
				p.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		p.markDelivered(ctx, item)
		metrics.OutboxDeliveries.WithLabelValues(item.Kind, "delivered").Inc()
		if err := p.store.Ack(item); err != nil {
			p.logger.Warn("failed to purge delivered outbox item", zap.Error(err))
		}
	}
	return nil
}

// Len returns the number of queued items.
func (p *OutboxProcessor) Len() int {
	if p == nil || p.store == nil {
		return 0
	}
	size, err := p.store.Len()
	if err != nil {
		return 0
	}
	return size
}

func (p *OutboxProcessor) deliver(ctx context.Context, item outbox.Item) error {
	p.mu.RLock()
	fn, ok := p.handlers[item.Kind]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler for outbox kind %s", item.Kind)
	}

	deliverCtx, cancel := context.WithTimeout(ctx, p.cfg.DeliverTimeout)
	defer cancel()
	return fn(deliverCtx, item)
}

func (p *OutboxProcessor) alreadyDelivered(ctx context.Context, item outbox.Item) bool {
	if p.delivered == nil || item.Key == "" {
		return false
	}
	done, err := p.delivered.Delivered(ctx, item.Key)
	if err != nil {
		p.logger.Warn("delivery log lookup failed", zap.String("key", item.Key), zap.Error(err))
		return false
	}
	return done
}

func (p *OutboxProcessor) markDelivered(ctx context.Context, item outbox.Item) {
	if p.delivered == nil || item.Key == "" {
		return
	}
	if err := p.delivered.MarkDelivered(ctx, item.Key); err != nil {
		p.logger.Warn("failed to record delivery", zap.String("key", item.Key), zap.Error(err))
	}
}

func (p *OutboxProcessor) updateGauge() {
	metrics.OutboxPending.Set(float64(p.Len()))
}
