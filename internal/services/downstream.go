package services

import (
	"context"
	"encoding/json"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	"github.com/amankumar-in/univance/usecase"
)

// Delivery priorities; lower drains first.
const (
	priorityPoints       = 1
	priorityAccount      = 2
	priorityNotification = 4
)

// Downstream turns use case calls to peer services into outbox submissions.
type Downstream struct {
	processor *OutboxProcessor
}

func NewDownstream(processor *OutboxProcessor) *Downstream {
	return &Downstream{processor: processor}
}

func (d *Downstream) RecordTransaction(ctx context.Context, tx domain.PointsTransaction) error {
	if d.processor == nil || tx.StudentID == "" {
		return domain.ErrInvalidPayload
	}
	item, err := outbox.NewItem(outbox.KindPointsTransaction, tx.IdempotencyKey, priorityPoints, tx)
	if err != nil {
		return err
	}
	return d.processor.Submit(ctx, item)
}

func (d *Downstream) Notify(ctx context.Context, n domain.Notification) error {
	if d.processor == nil || n.RecipientID == "" {
		return domain.ErrInvalidPayload
	}
	item, err := outbox.NewItem(outbox.KindNotification, "", priorityNotification, n)
	if err != nil {
		return err
	}
	return d.processor.Submit(ctx, item)
}

func (d *Downstream) OpenPointsAccount(ctx context.Context, studentID string) error {
	if d.processor == nil || studentID == "" {
		return domain.ErrInvalidPayload
	}
	item, err := outbox.NewItem(outbox.KindPointsAccount, "points-account:"+studentID, priorityAccount,
		accountRequest{StudentID: studentID})
	if err != nil {
		return err
	}
	return d.processor.Submit(ctx, item)
}

var (
	_ usecase.PointsLedger        = (*Downstream)(nil)
	_ usecase.Notifier            = (*Downstream)(nil)
	_ usecase.PointsAccountOpener = (*Downstream)(nil)
)

type accountRequest struct {
	StudentID string `json:"studentId"`
}

// TransactionPoster is the points service surface used to deliver ledger entries.
type TransactionPoster interface {
	CreateTransaction(ctx context.Context, tx domain.PointsTransaction, key string) error
}

// NotificationSender is the notification service surface.
type NotificationSender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// AccountCreator is the points service surface used to open accounts.
type AccountCreator interface {
	CreateAccount(ctx context.Context, studentID string) (string, error)
}

// AccountRecorder stores the account id returned by the points service.
type AccountRecorder interface {
	SetPointsAccount(ctx context.Context, studentID, accountID string) error
}

// DeliverPointsTransaction posts queued ledger entries, forwarding the item key for idempotency.
func DeliverPointsTransaction(poster TransactionPoster) DeliveryFunc {
	return func(ctx context.Context, item outbox.Item) error {
		var tx domain.PointsTransaction
		if err := json.Unmarshal(item.Payload, &tx); err != nil {
			return err
		}
		return poster.CreateTransaction(ctx, tx, item.Key)
	}
}

// DeliverNotification posts queued notifications.
func DeliverNotification(sender NotificationSender) DeliveryFunc {
	return func(ctx context.Context, item outbox.Item) error {
		var n domain.Notification
		if err := json.Unmarshal(item.Payload, &n); err != nil {
			return err
		}
		return sender.Send(ctx, n)
	}
}

// DeliverPointsAccount opens the account and replaces the student's temporary account id.
func DeliverPointsAccount(creator AccountCreator, students AccountRecorder) DeliveryFunc {
	return func(ctx context.Context, item outbox.Item) error {
		var req accountRequest
		if err := json.Unmarshal(item.Payload, &req); err != nil {
			return err
		}
		accountID, err := creator.CreateAccount(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if accountID == "" {
			return nil
		}
		return students.SetPointsAccount(ctx, req.StudentID, accountID)
	}
}
