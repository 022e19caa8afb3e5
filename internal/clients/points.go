package clients

import (
	"context"
	"net/url"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/domain"
)

// PointsClient talks to the external points service.
type PointsClient struct {
	peer peer
}

func NewPointsClient(client *fasthttp.Client, cfg Config) *PointsClient {
	return &PointsClient{peer: newPeer(client, cfg)}
}

// CreateTransaction posts a ledger entry. key is forwarded as the idempotency header.
func (c *PointsClient) CreateTransaction(ctx context.Context, tx domain.PointsTransaction, key string) error {
	return c.peer.do(ctx, fasthttp.MethodPost, "/api/points/transactions",
		map[string]string{IdempotencyHeader: key}, tx, nil)
}

// CreateAccount opens a points account and returns its id.
func (c *PointsClient) CreateAccount(ctx context.Context, studentID string) (string, error) {
	var resp struct {
		Data struct {
			ID       string `json:"id"`
			LegacyID string `json:"_id"`
		} `json:"data"`
	}
	err := c.peer.do(ctx, fasthttp.MethodPost, "/api/points/accounts",
		map[string]string{IdempotencyHeader: "points-account:" + studentID},
		map[string]string{"studentId": studentID}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Data.ID != "" {
		return resp.Data.ID, nil
	}
	return resp.Data.LegacyID, nil
}

// Balance returns the student's current spendable balance.
func (c *PointsClient) Balance(ctx context.Context, studentID string) (int, error) {
	var resp struct {
		Data struct {
			Balance        int  `json:"balance"`
			CurrentBalance *int `json:"currentBalance"`
		} `json:"data"`
	}
	if err := c.peer.do(ctx, fasthttp.MethodGet, "/api/points/balance/"+url.PathEscape(studentID), nil, nil, &resp); err != nil {
		return 0, err
	}
	if resp.Data.CurrentBalance != nil {
		return *resp.Data.CurrentBalance, nil
	}
	return resp.Data.Balance, nil
}
