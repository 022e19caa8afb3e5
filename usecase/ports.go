package usecase

import (
	"context"
	"time"

	"github.com/amankumar-in/univance/domain"
)

// PointsLedger hands ledger entries to the points service. A nil error means the entry was
// delivered or durably queued for delivery.
type PointsLedger interface {
	RecordTransaction(ctx context.Context, tx domain.PointsTransaction) error
}

// Notifier sends best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// PointsAccountOpener asks the points service to open an account for a student.
type PointsAccountOpener interface {
	OpenPointsAccount(ctx context.Context, studentID string) error
}

// PointsBalance reads a student's spendable balance.
type PointsBalance interface {
	Balance(ctx context.Context, studentID string) (int, error)
}

// Clock abstracts time for use cases with date arithmetic.
type Clock func() time.Time

// Now returns the wall clock when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
