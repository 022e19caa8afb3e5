package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
)

const linkCodeLength = 6

// ParentProfile is the caller's parent profile with children expanded.
type ParentProfile struct {
	domain.Parent
	Children []domain.PersonSummary `json:"children"`
}

// CreateParentProfile creates the caller's parent profile with a fresh link code.
func (uc *UseCase) CreateParentProfile(ctx context.Context, p *domain.Principal) (*domain.Parent, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	code, err := randomCode(linkCodeLength)
	if err != nil {
		return nil, err
	}
	return uc.repos.Parents.Create(ctx, &domain.Parent{
		UserID:   p.UserID,
		ChildIDs: []string{},
		LinkCode: code,
	})
}

func (uc *UseCase) MyParentProfile(ctx context.Context, p *domain.Principal) (*ParentProfile, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	parent, err := uc.repos.Parents.GetByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return nil, domain.NotFound("Parent profile not found")
		}
		return nil, err
	}
	children, err := uc.childSummaries(ctx, parent.ChildIDs)
	if err != nil {
		return nil, err
	}
	return &ParentProfile{Parent: *parent, Children: children}, nil
}

func (uc *UseCase) childSummaries(ctx context.Context, ids []string) ([]domain.PersonSummary, error) {
	children := make([]domain.PersonSummary, 0, len(ids))
	for _, id := range ids {
		student, err := uc.repos.Students.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrStudentNotFound) {
				continue
			}
			return nil, err
		}
		summary := domain.PersonSummary{ProfileID: student.ID, UserID: student.UserID}
		if user, err := uc.repos.Users.GetByID(ctx, student.UserID); err == nil {
			summary.FirstName = user.FirstName
			summary.LastName = user.LastName
			summary.Email = user.Email
			summary.Avatar = user.Avatar
		}
		children = append(children, summary)
	}
	return children, nil
}

// StudentLinkInput identifies the student a parent wants to link with.
type StudentLinkInput struct {
	StudentID string
	Email     string
}

// RequestStudentLink records a pending request the student has to answer.
func (uc *UseCase) RequestStudentLink(ctx context.Context, p *domain.Principal, in StudentLinkInput) (*domain.LinkRequest, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if p.Role != domain.RoleParent {
		return nil, domain.Forbidden("Only parents can request a student link")
	}
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.StudentID == "" && in.Email == "" {
		return nil, domain.Invalid("Student ID or email is required")
	}

	parent, err := uc.repos.Parents.GetByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return nil, domain.NotFound("Parent profile not found")
		}
		return nil, err
	}
	student, err := uc.findStudent(ctx, in)
	if err != nil {
		return nil, err
	}
	if student.HasParent(parent.ID) {
		return nil, domain.Invalid("Already linked with this student")
	}

	request, err := uc.repos.Requests.Create(ctx, &domain.LinkRequest{
		RequestType: domain.LinkRequestParent,
		Initiator:   domain.RoleParent,
		InitiatorID: parent.ID,
		TargetID:    student.ID,
		TargetEmail: in.Email,
		Code:        parent.LinkCode,
		Status:      domain.LinkPending,
		ExpiresAt:   uc.now.Now().Add(uc.requestTTL),
	})
	if err != nil {
		return nil, err
	}
	uc.log(ctx).Info("link request created", zap.String("request_id", request.ID), zap.String("student_id", student.ID))
	uc.notify(ctx, domain.Notification{
		Type:        domain.NotifyLinkRequest,
		RecipientID: student.UserID,
		Data: map[string]interface{}{
			"requestId": request.ID,
			"parentId":  parent.ID,
			"expiresAt": request.ExpiresAt,
		},
	})
	return request, nil
}

func (uc *UseCase) findStudent(ctx context.Context, in StudentLinkInput) (*domain.Student, error) {
	var (
		student *domain.Student
		err     error
	)
	if in.StudentID != "" {
		student, err = uc.repos.Students.GetByID(ctx, in.StudentID)
	} else {
		var user *domain.User
		if user, err = uc.repos.Users.GetByEmail(ctx, in.Email); err == nil {
			student, err = uc.repos.Students.GetByUserID(ctx, user.ID)
		}
	}
	if errors.Is(err, domain.ErrStudentNotFound) || errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.NotFound("Student not found")
	}
	return student, err
}
