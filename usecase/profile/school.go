package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
)

const joinCodeLength = 8

type CreateSchoolInput struct {
	Name    string
	Address string
}

// CreateSchool registers a school with the caller as its first admin.
func (uc *UseCase) CreateSchool(ctx context.Context, p *domain.Principal, in CreateSchoolInput) (*domain.School, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if p.Role != domain.RoleSchoolAdmin && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("Only school administrators can create schools")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("School name is required")
	}
	school, err := uc.repos.Schools.CreateSchool(ctx, &domain.School{
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		AdminIDs: []string{p.UserID},
	})
	if err != nil {
		return nil, err
	}
	uc.log(ctx).Info("school created", zap.String("school_id", school.ID))
	return school, nil
}

func (uc *UseCase) School(ctx context.Context, p *domain.Principal, id string) (*domain.School, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.repos.Schools.GetSchool(ctx, id)
}

type CreateClassInput struct {
	SchoolID  string
	Name      string
	Grade     int
	TeacherID string
}

// CreateClass adds a class with a fresh join code. The teacher, when given, is attached in the
// same transaction.
func (uc *UseCase) CreateClass(ctx context.Context, p *domain.Principal, in CreateClassInput) (*domain.SchoolClass, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(in.SchoolID) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("schoolId and name are required")
	}
	allowed := p.Role == domain.RolePlatformAdmin
	if !allowed && p.Role == domain.RoleSchoolAdmin {
		var err error
		if allowed, err = uc.administers(ctx, p, in.SchoolID); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, domain.Forbidden("Not authorized to create classes for this school")
	}
	if in.TeacherID != "" {
		if _, err := uc.repos.Teachers.GetByID(ctx, in.TeacherID); err != nil {
			return nil, err
		}
	}
	code, err := randomCode(joinCodeLength)
	if err != nil {
		return nil, err
	}
	return uc.repos.Schools.CreateClass(ctx, &domain.SchoolClass{
		SchoolID:   in.SchoolID,
		Name:       strings.TrimSpace(in.Name),
		Grade:      in.Grade,
		TeacherID:  in.TeacherID,
		StudentIDs: []string{},
		JoinCode:   code,
	})
}

func (uc *UseCase) Class(ctx context.Context, p *domain.Principal, id string) (*domain.SchoolClass, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.repos.Schools.GetClass(ctx, id)
}
