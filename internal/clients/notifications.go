package clients

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/domain"
)

// NotificationClient posts fire-and-forget notifications.
type NotificationClient struct {
	peer peer
}

func NewNotificationClient(client *fasthttp.Client, cfg Config) *NotificationClient {
	return &NotificationClient{peer: newPeer(client, cfg)}
}

func (c *NotificationClient) Send(ctx context.Context, n domain.Notification) error {
	return c.peer.do(ctx, fasthttp.MethodPost, "/api/notifications", nil, n, nil)
}
