package outbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	pendingBucket = []byte("pending")
	keysBucket    = []byte("keys")
	deadBucket    = []byte("dead")
)

// Store persists undelivered downstream calls in BoltDB. Items are ordered by priority then age,
// and an idempotency key can be queued at most once.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and its buckets.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, keysBucket, deadBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Enqueue stores an item. It reports false when an item with the same key is already queued.
func (s *Store) Enqueue(item Item) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	item.bucketKey = buildKey(item)

	payload, err := json.Marshal(item)
	if err != nil {
		return false, err
	}

	queued := false
	err = s.db.Update(func(tx *bolt.Tx) error {
		keys := tx.Bucket(keysBucket)
		if item.Key != "" {
			if keys.Get([]byte(item.Key)) != nil {
				return nil
			}
			if err := keys.Put([]byte(item.Key), item.bucketKey); err != nil {
				return err
			}
		}
		queued = true
		return tx.Bucket(pendingBucket).Put(item.bucketKey, payload)
	})
	return queued, err
}

// Peek returns up to limit items in delivery order without removing them.
func (s *Store) Peek(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.bucketKey = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Ack removes a delivered item and releases its key.
func (s *Store) Ack(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.remove(tx, item)
	})
}

// Retry records a failed attempt and moves the item behind newer work of the same priority.
func (s *Store) Retry(item Item, cause error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.Attempts++
	if cause != nil {
		item.LastError = cause.Error()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(pendingBucket).Delete(item.bucketKey); err != nil {
			return err
		}
		item.EnqueuedAt = time.Now()
		item.bucketKey = buildKey(item)
		payload, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if item.Key != "" {
			if err := tx.Bucket(keysBucket).Put([]byte(item.Key), item.bucketKey); err != nil {
				return err
			}
		}
		return tx.Bucket(pendingBucket).Put(item.bucketKey, payload)
	})
}

// Bury moves an item that exhausted its attempts to the dead-letter bucket.
func (s *Store) Bury(item Item, cause error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if cause != nil {
		item.LastError = cause.Error()
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := s.remove(tx, item); err != nil {
			return err
		}
		return tx.Bucket(deadBucket).Put([]byte(item.ID), payload)
	})
}

// Len returns the number of pending items.
func (s *Store) Len() (int, error) {
	return s.count(pendingBucket)
}

// Dead returns the number of buried items.
func (s *Store) Dead() (int, error) {
	return s.count(deadBucket)
}

// PurgeDead drops buried items enqueued before the cutoff.
func (s *Store) PurgeDead(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	purged := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(deadBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.EnqueuedAt.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
			}
		}
		return nil
	})
	return purged, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) remove(tx *bolt.Tx, item Item) error {
	if item.Key != "" {
		if err := tx.Bucket(keysBucket).Delete([]byte(item.Key)); err != nil {
			return err
		}
	}
	if len(item.bucketKey) > 0 {
		return tx.Bucket(pendingBucket).Delete(item.bucketKey)
	}

	c := tx.Bucket(pendingBucket).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var stored Item
		if err := json.Unmarshal(v, &stored); err != nil {
			continue
		}
		if stored.ID == item.ID {
			return c.Delete()
		}
	}
	return nil
}

func (s *Store) count(bucket []byte) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	return count, err
}

func buildKey(item Item) []byte {
	return []byte(fmt.Sprintf("%d_%020d_%s", item.Priority, item.EnqueuedAt.UnixNano(), item.ID))
}
