package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
)

func TestMonitor_Refresh(t *testing.T) {
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	defer store.Close()

	item, err := outbox.NewItem(outbox.KindNotification, "", 4, map[string]string{"type": "task_assigned"})
	require.NoError(t, err)
	_, err = store.Enqueue(item)
	require.NoError(t, err)

	m := New(nil, nil, store, time.Hour, nil)
	assert.False(t, m.IsOnline(), "offline until the first check")

	m.refresh()
	status := m.GetStatus()
	assert.False(t, status.PostgreSQL)
	assert.False(t, status.Redis)
	assert.True(t, status.Outbox)
	assert.Equal(t, 1, status.OutboxPending)
	assert.False(t, status.Healthy())
	assert.False(t, m.IsOnline())
	assert.False(t, status.LastCheck.IsZero())
}

func TestMonitor_MissingOutbox(t *testing.T) {
	m := New(nil, nil, nil, 0, nil)
	m.refresh()
	assert.False(t, m.GetStatus().Outbox)
}
