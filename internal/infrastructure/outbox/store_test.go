package outbox

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustItem(t *testing.T, kind, key string, priority int) Item {
	t.Helper()
	item, err := NewItem(kind, key, priority, map[string]string{"key": key})
	require.NoError(t, err)
	return item
}

func TestStore_EnqueueDeduplicatesKeys(t *testing.T) {
	store := openStore(t)

	queued, err := store.Enqueue(mustItem(t, KindPointsTransaction, "task-award:1", 1))
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = store.Enqueue(mustItem(t, KindPointsTransaction, "task-award:1", 1))
	require.NoError(t, err)
	assert.False(t, queued)

	for i := 0; i < 2; i++ {
		queued, err = store.Enqueue(mustItem(t, KindNotification, "", 4))
		require.NoError(t, err)
		assert.True(t, queued, "items without a key are never deduplicated")
	}

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_PeekOrdersByPriority(t *testing.T) {
	store := openStore(t)

	_, err := store.Enqueue(mustItem(t, KindNotification, "", 4))
	require.NoError(t, err)
	_, err = store.Enqueue(mustItem(t, KindPointsAccount, "points-account:s1", 2))
	require.NoError(t, err)
	_, err = store.Enqueue(mustItem(t, KindPointsTransaction, "task-award:1", 1))
	require.NoError(t, err)

	items, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, KindPointsTransaction, items[0].Kind)
	assert.Equal(t, KindPointsAccount, items[1].Kind)
	assert.Equal(t, KindNotification, items[2].Kind)

	limited, err := store.Peek(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_AckReleasesKey(t *testing.T) {
	store := openStore(t)
	_, err := store.Enqueue(mustItem(t, KindPointsTransaction, "redemption-spend:r1", 1))
	require.NoError(t, err)

	items, err := store.Peek(1)
	require.NoError(t, err)
	require.NoError(t, store.Ack(items[0]))

	n, err := store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	queued, err := store.Enqueue(mustItem(t, KindPointsTransaction, "redemption-spend:r1", 1))
	require.NoError(t, err)
	assert.True(t, queued)
}

func TestStore_RetryAndBury(t *testing.T) {
	store := openStore(t)
	_, err := store.Enqueue(mustItem(t, KindPointsTransaction, "task-award:1", 1))
	require.NoError(t, err)

	items, err := store.Peek(1)
	require.NoError(t, err)
	require.NoError(t, store.Retry(items[0], errors.New("connection refused")))

	items, err = store.Peek(10)
	require.NoError(t, err)
	require.Len(t, items, 1, "retry replaces the item instead of duplicating it")
	assert.Equal(t, 1, items[0].Attempts)
	assert.Equal(t, "connection refused", items[0].LastError)

	queued, err := store.Enqueue(mustItem(t, KindPointsTransaction, "task-award:1", 1))
	require.NoError(t, err)
	assert.False(t, queued, "key stays reserved across retries")

	require.NoError(t, store.Bury(items[0], errors.New("gave up")))
	pending, err := store.Len()
	require.NoError(t, err)
	dead, err := store.Dead()
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Equal(t, 1, dead)

	purged, err := store.PurgeDead(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = store.PurgeDead(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
}

func TestNewItem_Normalize(t *testing.T) {
	item := mustItem(t, KindNotification, "", 9)
	item.normalize()
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 3, item.Priority)
	assert.False(t, item.EnqueuedAt.IsZero())
	assert.JSONEq(t, `{"key":""}`, string(item.Payload))
}

func TestStore_NilSafe(t *testing.T) {
	var store *Store
	_, err := store.Enqueue(Item{})
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
