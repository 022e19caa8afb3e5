package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Phase orders shutdown: everything in a lower phase stops before the next phase begins.
type Phase int

const (
	// PhaseIngress stops accepting HTTP traffic.
	PhaseIngress Phase = iota
	// PhaseWorkers stops schedulers and flushes queued downstream calls.
	PhaseWorkers
	// PhaseStorage closes database pools, Redis clients and local files.
	PhaseStorage
)

func (p Phase) String() string {
	switch p {
	case PhaseIngress:
		return "ingress"
	case PhaseWorkers:
		return "workers"
	case PhaseStorage:
		return "storage"
	default:
		return "unknown"
	}
}

type ShutdownFunc func(ctx context.Context) error

// Stopper is a component whose shutdown cannot fail, such as a cron scheduler.
type Stopper interface {
	Stop(ctx context.Context)
}

type hook struct {
	phase Phase
	seq   int
	name  string
	fn    ShutdownFunc
}

// Manager runs shutdown hooks phase by phase when the process is asked to stop.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []hook
	done  bool
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register adds a hook to a phase. Within a phase, later registrations run first.
func (m *Manager) Register(phase Phase, name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{phase: phase, seq: len(m.hooks), name: name, fn: fn})
}

func (m *Manager) RegisterStopper(phase Phase, name string, s Stopper) {
	if s == nil {
		return
	}
	m.Register(phase, name, func(ctx context.Context) error {
		s.Stop(ctx)
		return nil
	})
}

// Shutdown runs every hook once under the shared timeout. Hook errors are joined; a failing
// hook never prevents the rest from running.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true

	ordered := append([]hook(nil), m.hooks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].phase != ordered[j].phase {
			return ordered[i].phase < ordered[j].phase
		}
		return ordered[i].seq > ordered[j].seq
	})

	var result error
	for _, h := range ordered {
		started := time.Now()
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed",
				zap.Stringer("phase", h.phase),
				zap.String("component", h.name),
				zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped",
			zap.Stringer("phase", h.phase),
			zap.String("component", h.name),
			zap.Duration("took", time.Since(started)))
	}
	if ctx.Err() != nil {
		m.logger.Warn("shutdown deadline exceeded", zap.Duration("timeout", m.timeout))
	}
	return result
}

// Listen cancels the application context on SIGINT or SIGTERM.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
