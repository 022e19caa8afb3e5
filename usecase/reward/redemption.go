package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/metrics"
	"github.com/amankumar-in/univance/repository"
)

func spendKey(id string) string  { return "redemption-spend:" + id }
func refundKey(id string) string { return "redemption-refund:" + id }

// Redeem reserves one unit of the reward and debits its cost. The stock decrement and the
// redemption row are written together; the debit goes through the ledger.
func (uc *UseCase) Redeem(ctx context.Context, p *domain.Principal, rewardID string) (*domain.Redemption, error) {
	studentID, err := studentOf(p)
	if err != nil {
		return nil, err
	}
	reward, err := uc.load(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive || !reward.IsVisible || !reward.InStock() {
		return nil, domain.ErrRewardUnavailable
	}

	if uc.balances == nil {
		return nil, domain.ErrPointsServiceOffline
	}
	balance, err := uc.balances.Balance(ctx, studentID)
	if err != nil {
		uc.log(ctx).Warn("points balance unavailable", zap.String("student_id", studentID), zap.Error(err))
		return nil, domain.ErrPointsServiceOffline
	}
	if balance < reward.PointsCost {
		return nil, domain.ErrInsufficientPoints
	}

	redemption, err := uc.redemptions.Reserve(ctx, &domain.Redemption{
		RewardID:    reward.ID,
		RewardTitle: reward.Title,
		StudentID:   studentID,
		PointsSpent: reward.PointsCost,
		Status:      domain.RedemptionPending,
	})
	if err != nil {
		return nil, err
	}

	err = uc.ledger.RecordTransaction(ctx, domain.PointsTransaction{
		StudentID:      studentID,
		Amount:         -reward.PointsCost,
		Type:           domain.PointsSpent,
		Source:         "redemption",
		SourceID:       redemption.ID,
		Description:    fmt.Sprintf("Redeemed reward: %s", reward.Title),
		Metadata:       map[string]string{"rewardId": reward.ID},
		IdempotencyKey: spendKey(redemption.ID),
	})
	if err != nil {
		uc.log(ctx).Error("points debit could not be queued, cancelling redemption",
			zap.String("redemption_id", redemption.ID), zap.Error(err))
		redemption.Status = domain.RedemptionCancelled
		if rerr := uc.redemptions.Resolve(ctx, redemption, true); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "points service unavailable", err)
	}

	metrics.Redemptions.WithLabelValues(string(domain.RedemptionPending)).Inc()
	uc.notify(ctx, domain.Notification{
		Type:        domain.NotifyRewardRedeemed,
		RecipientID: reward.CreatedBy,
		Data: map[string]interface{}{
			"redemptionId": redemption.ID,
			"rewardId":     reward.ID,
			"rewardTitle":  reward.Title,
			"studentId":    studentID,
			"pointsSpent":  redemption.PointsSpent,
		},
	})
	return redemption, nil
}

type ReviewInput struct {
	Approve  bool
	Feedback string
}

// ReviewRedemption approves or rejects a pending redemption. Rejection restocks and refunds.
func (uc *UseCase) ReviewRedemption(ctx context.Context, p *domain.Principal, id string, in ReviewInput) (*domain.Redemption, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	redemption, err := uc.redemptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if redemption.Status != domain.RedemptionPending {
		return nil, domain.ErrNotPending
	}
	if p.Role != domain.RolePlatformAdmin {
		reward, err := uc.rewards.GetByID(ctx, redemption.RewardID)
		if err != nil {
			if errors.Is(err, domain.ErrRewardNotFound) {
				return nil, domain.Forbidden("Not authorized to review this redemption")
			}
			return nil, err
		}
		if reward.CreatedBy != p.UserID {
			return nil, domain.Forbidden("Not authorized to review this redemption")
		}
	}

	now := time.Now().UTC()
	redemption.Status = domain.RedemptionApproved
	if !in.Approve {
		redemption.Status = domain.RedemptionRejected
	}
	redemption.ReviewedBy = p.UserID
	redemption.ReviewerRole = p.Role
	redemption.Feedback = in.Feedback
	redemption.ReviewedAt = &now

	if err := uc.redemptions.Resolve(ctx, redemption, !in.Approve); err != nil {
		return nil, err
	}
	if !in.Approve {
		uc.refund(ctx, redemption)
	}
	metrics.Redemptions.WithLabelValues(string(redemption.Status)).Inc()
	uc.notifyStudent(ctx, redemption)
	return redemption, nil
}

// CancelRedemption lets a student withdraw a pending redemption.
func (uc *UseCase) CancelRedemption(ctx context.Context, p *domain.Principal, id string) (*domain.Redemption, error) {
	studentID, err := studentOf(p)
	if err != nil {
		return nil, err
	}
	redemption, err := uc.redemptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if redemption.StudentID != studentID {
		return nil, domain.Forbidden("Not authorized to cancel this redemption")
	}
	if redemption.Status != domain.RedemptionPending {
		return nil, domain.ErrNotPending
	}
	redemption.Status = domain.RedemptionCancelled
	if err := uc.redemptions.Resolve(ctx, redemption, true); err != nil {
		return nil, err
	}
	uc.refund(ctx, redemption)
	metrics.Redemptions.WithLabelValues(string(redemption.Status)).Inc()
	return redemption, nil
}

type RedemptionListInput struct {
	StudentID string
	Status    string
	Page      domain.Page
}

type RedemptionList struct {
	Redemptions []domain.Redemption
	Pagination  domain.Pagination
}

// ListRedemptions scopes students to their own rows and reward creators to their rewards.
func (uc *UseCase) ListRedemptions(ctx context.Context, p *domain.Principal, in RedemptionListInput) (*RedemptionList, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	filter := repository.RedemptionFilter{
		Status: in.Status,
		Limit:  in.Page.Size,
		Offset: in.Page.Offset(),
	}
	switch p.Role {
	case domain.RoleStudent:
		filter.StudentID = p.ProfileFor(domain.RoleStudent)
	case domain.RoleParent:
		if in.StudentID != "" && !p.IsParentOf(in.StudentID) {
			return nil, domain.Forbidden("Parents can only view redemptions of their own children")
		}
		filter.StudentID = in.StudentID
		if filter.StudentID == "" {
			filter.RewardOwner = p.UserID
		}
	case domain.RoleTeacher, domain.RoleSchoolAdmin:
		filter.StudentID = in.StudentID
		filter.RewardOwner = p.UserID
	case domain.RolePlatformAdmin, domain.RoleSubAdmin:
		filter.StudentID = in.StudentID
	default:
		return nil, domain.Forbidden("Not authorized to view redemptions")
	}

	redemptions, total, err := uc.redemptions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &RedemptionList{Redemptions: redemptions, Pagination: in.Page.Paginate(total)}, nil
}

// refund credits the spent points back. The key makes a retried refund a no-op.
func (uc *UseCase) refund(ctx context.Context, r *domain.Redemption) {
	err := uc.ledger.RecordTransaction(ctx, domain.PointsTransaction{
		StudentID:      r.StudentID,
		Amount:         r.PointsSpent,
		Type:           domain.PointsRefunded,
		Source:         "redemption",
		SourceID:       r.ID,
		Description:    fmt.Sprintf("Refund for %s redemption", r.Status),
		Metadata:       map[string]string{"rewardId": r.RewardID},
		IdempotencyKey: refundKey(r.ID),
	})
	if err != nil {
		uc.log(ctx).Error("points refund could not be queued",
			zap.String("redemption_id", r.ID), zap.Int("points", r.PointsSpent), zap.Error(err))
	}
}

func (uc *UseCase) notifyStudent(ctx context.Context, r *domain.Redemption) {
	uc.notify(ctx, domain.Notification{
		Type:        domain.NotifyRedemptionUpdated,
		RecipientID: r.StudentID,
		Data: map[string]interface{}{
			"redemptionId": r.ID,
			"rewardId":     r.RewardID,
			"status":       r.Status,
			"feedback":     r.Feedback,
		},
	})
}
