package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a periodic maintenance task. It returns how many rows it touched.
type Job func(ctx context.Context) (int64, error)

// Scheduler runs maintenance jobs such as the recurrence sweep and link-request expiry.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a named job on a cron spec (seconds field included, descriptors allowed).
func (s *Scheduler) Register(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	n, err := job(ctx)
	if err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("job finished",
			zap.String("job", name),
			zap.Int64("affected", n),
			zap.Duration("took", time.Since(started)))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}
