package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/amankumar-in/univance/repository"
)

type deliveryLog struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewDeliveryLog creates a Redis-backed DeliveryLog. Keys expire after ttl.
func NewDeliveryLog(client *redislib.Client, service string, ttl time.Duration) repository.DeliveryLog {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &deliveryLog{
		client: client,
		prefix: fmt.Sprintf("%s:delivered:", service),
		ttl:    ttl,
	}
}

func (l *deliveryLog) Delivered(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	n, err := l.client.Exists(ctx, l.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *deliveryLog) MarkDelivered(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return l.client.Set(ctx, l.key(key), time.Now().UTC().Format(time.RFC3339), l.ttl).Err()
}

func (l *deliveryLog) key(id string) string {
	return l.prefix + id
}
