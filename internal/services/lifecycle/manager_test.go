package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stopFunc func()

func (f stopFunc) Stop(context.Context) { f() }

func TestManager_ShutdownOrder(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	record := func(name string) ShutdownFunc {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	m.Register(PhaseStorage, "postgres", record("postgres"))
	m.Register(PhaseStorage, "outbox_store", record("outbox_store"))
	m.RegisterStopper(PhaseWorkers, "scheduler", stopFunc(func() { order = append(order, "scheduler") }))
	m.Register(PhaseWorkers, "outbox_flush", record("outbox_flush"))
	m.Register(PhaseIngress, "http_server", record("http_server"))

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "outbox_flush", "scheduler", "outbox_store", "postgres"}, order)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 5, "hooks run once")
}

func TestManager_ShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	errRedis := errors.New("redis close")
	errBolt := errors.New("bolt close")
	ran := false

	m.Register(PhaseStorage, "redis", func(context.Context) error { return errRedis })
	m.Register(PhaseStorage, "outbox_store", func(context.Context) error { return errBolt })
	m.Register(PhaseIngress, "http_server", func(context.Context) error { ran = true; return nil })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, errRedis)
	assert.ErrorIs(t, err, errBolt)
	assert.True(t, ran)
}

func TestManager_ShutdownDeadline(t *testing.T) {
	m := New(10*time.Millisecond, nil)
	var sawDeadline bool
	m.Register(PhaseIngress, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline = true
		return nil
	})

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, sawDeadline)
	assert.Equal(t, "ingress", PhaseIngress.String())
}
