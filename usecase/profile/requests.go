package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
)

// ParentRequests lists the pending, unexpired parent requests addressed to the caller.
func (uc *UseCase) ParentRequests(ctx context.Context, p *domain.Principal) ([]domain.LinkRequestView, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	student, err := uc.ownStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	requests, err := uc.repos.Requests.ListPending(ctx, student.ID, domain.LinkRequestParent, domain.RoleParent)
	if err != nil {
		return nil, err
	}

	now := uc.now.Now()
	live := make([]domain.LinkRequest, 0, len(requests))
	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		if r.Expired(now) {
			continue
		}
		live = append(live, r)
		ids = append(ids, r.InitiatorID)
	}
	if len(live) == 0 {
		return []domain.LinkRequestView{}, nil
	}

	parents, err := uc.repos.Parents.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.PersonSummary, len(parents))
	for _, s := range parents {
		byID[s.ProfileID] = s
	}

	views := make([]domain.LinkRequestView, 0, len(live))
	for _, r := range live {
		parent := byID[r.InitiatorID]
		views = append(views, domain.LinkRequestView{
			ID:           r.ID,
			ParentName:   strings.TrimSpace(parent.FirstName + " " + parent.LastName),
			ParentEmail:  parent.Email,
			ParentAvatar: parent.Avatar,
			Code:         r.Code,
			CreatedAt:    r.CreatedAt,
			ExpiresAt:    r.ExpiresAt,
		})
	}
	return views, nil
}

type RequestAction string

const (
	RequestApprove RequestAction = "approve"
	RequestReject  RequestAction = "reject"
)

// RespondParentRequest answers a pending request. Approval links both sides in one transaction.
func (uc *UseCase) RespondParentRequest(ctx context.Context, p *domain.Principal, requestID string, action RequestAction) (*domain.LinkRequest, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if action != RequestApprove && action != RequestReject {
		return nil, domain.Invalid("Action must be either 'approve' or 'reject'")
	}
	student, err := uc.ownStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	request, err := uc.repos.Requests.GetPending(ctx, requestID, student.ID, domain.LinkRequestParent)
	if err != nil {
		return nil, err
	}
	if request.Expired(uc.now.Now()) {
		if err := uc.repos.Requests.SetStatus(ctx, request.ID, domain.LinkRejected); err != nil {
			uc.log(ctx).Warn("failed to reject expired request", zap.String("request_id", request.ID), zap.Error(err))
		}
		return nil, domain.ErrRequestExpired
	}

	if action == RequestApprove {
		err = uc.repos.Links.ApproveParentRequest(ctx, request.ID, student.ID, request.InitiatorID)
		request.Status = domain.LinkApproved
	} else {
		err = uc.repos.Requests.SetStatus(ctx, request.ID, domain.LinkRejected)
		request.Status = domain.LinkRejected
	}
	if err != nil {
		return nil, err
	}

	if parent, err := uc.repos.Parents.GetByID(ctx, request.InitiatorID); err == nil {
		uc.notify(ctx, domain.Notification{
			Type:        domain.NotifyLinkRequest,
			RecipientID: parent.UserID,
			Data: map[string]interface{}{
				"requestId": request.ID,
				"studentId": student.ID,
				"status":    request.Status,
			},
		})
	} else if !errors.Is(err, domain.ErrParentNotFound) {
		uc.log(ctx).Warn("parent lookup failed", zap.String("parent_id", request.InitiatorID), zap.Error(err))
	}
	return request, nil
}

// ExpireRequests rejects every pending request past its expiry.
func (uc *UseCase) ExpireRequests(ctx context.Context) (int64, error) {
	n, err := uc.repos.Requests.RejectExpired(ctx, uc.now.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.logger.Info("expired link requests rejected", zap.Int64("count", n))
	}
	return n, nil
}
