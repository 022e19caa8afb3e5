package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(nil, time.Second)

	assert.Error(t, s.Register("broken", "not a spec", func(context.Context) (int64, error) { return 0, nil }))
	assert.NoError(t, s.Register("hourly", "0 0 * * * *", func(context.Context) (int64, error) { return 0, nil }))
	assert.NoError(t, s.Register("every", "@every 1m", func(context.Context) (int64, error) { return 0, nil }))
}

func TestScheduler_RunAppliesTimeout(t *testing.T) {
	s := NewScheduler(nil, 20*time.Millisecond)

	var deadline bool
	s.run("probe", func(ctx context.Context) (int64, error) {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.True(t, deadline)

	calls := 0
	s.run("failing", func(context.Context) (int64, error) {
		calls++
		return 0, errors.New("boom")
	})
	assert.Equal(t, 1, calls)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil, time.Second)
	require.NoError(t, s.Register("noop", "@every 1h", func(context.Context) (int64, error) { return 0, nil }))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
