package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kinds of downstream calls carried by the outbox.
const (
	KindPointsTransaction = "points_transaction"
	KindPointsAccount     = "points_account"
	KindNotification      = "notification"
)

// Item is one downstream call waiting for delivery.
type Item struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Priority   int             `json:"priority"`
	Attempts   int             `json:"attempts"`
	LastError  string          `json:"lastError,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`

	bucketKey []byte
}

// NewItem marshals payload into a fresh item.
func NewItem(kind, key string, priority int, payload interface{}) (Item, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Item{}, err
	}
	return Item{Kind: kind, Key: key, Priority: priority, Payload: raw}, nil
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.EnqueuedAt.IsZero() {
		i.EnqueuedAt = time.Now()
	}
}
