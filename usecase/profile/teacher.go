package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/amankumar-in/univance/domain"
)

type CreateTeacherInput struct {
	SchoolID       string
	SubjectsTaught []string
}

func (uc *UseCase) CreateTeacherProfile(ctx context.Context, p *domain.Principal, in CreateTeacherInput) (*domain.Teacher, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if in.SchoolID != "" {
		if _, err := uc.repos.Schools.GetSchool(ctx, in.SchoolID); err != nil {
			return nil, err
		}
	}
	return uc.repos.Teachers.Create(ctx, &domain.Teacher{
		UserID:         p.UserID,
		SchoolID:       in.SchoolID,
		ClassIDs:       []string{},
		SubjectsTaught: cleanSubjects(in.SubjectsTaught),
	})
}

func (uc *UseCase) MyTeacherProfile(ctx context.Context, p *domain.Principal) (*domain.Teacher, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	teacher, err := uc.repos.Teachers.GetByUserID(ctx, p.UserID)
	if errors.Is(err, domain.ErrTeacherNotFound) {
		return nil, domain.NotFound("Teacher profile not found")
	}
	return teacher, err
}

func (uc *UseCase) TeacherByID(ctx context.Context, p *domain.Principal, id string) (*domain.Teacher, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.repos.Teachers.GetByID(ctx, id)
}

// UpdateSubjects replaces the subject list. The teacher, platform admins and admins of the
// teacher's school may do this.
func (uc *UseCase) UpdateSubjects(ctx context.Context, p *domain.Principal, id string, subjects []string) (*domain.Teacher, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if subjects == nil {
		return nil, domain.Invalid("subjectsTaught is required")
	}
	teacher, err := uc.repos.Teachers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := teacher.UserID == p.UserID || p.Role.IsAdmin()
	if !allowed && p.Role == domain.RoleSchoolAdmin && teacher.SchoolID != "" {
		if allowed, err = uc.administers(ctx, p, teacher.SchoolID); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, domain.Forbidden("Not authorized to update this teacher")
	}

	teacher.SubjectsTaught = cleanSubjects(subjects)
	if err := uc.repos.Teachers.UpdateSubjects(ctx, id, teacher.SubjectsTaught); err != nil {
		return nil, err
	}
	return teacher, nil
}

// TeacherClasses lists the classes the teacher is attached to.
func (uc *UseCase) TeacherClasses(ctx context.Context, p *domain.Principal, id string) ([]domain.SchoolClass, error) {
	teacher, err := uc.TeacherByID(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if len(teacher.ClassIDs) == 0 {
		return []domain.SchoolClass{}, nil
	}
	return uc.repos.Schools.ListClasses(ctx, teacher.ClassIDs)
}

func cleanSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	seen := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
