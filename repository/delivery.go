package repository

import "context"

// DeliveryLog remembers idempotency keys of downstream calls that already went through.
type DeliveryLog interface {
	Delivered(ctx context.Context, key string) (bool, error)
	MarkDelivered(ctx context.Context, key string) error
}
