package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
)

// CreateStudentInput holds the optional fields of a new student profile.
type CreateStudentInput struct {
	Grade    int
	SchoolID string
}

// CreateStudentProfile stores the profile with a temporary points account and asks the points
// service for a real one. A points service outage never fails the request.
func (uc *UseCase) CreateStudentProfile(ctx context.Context, p *domain.Principal, in CreateStudentInput) (*domain.Student, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if in.Grade < 0 {
		return nil, domain.Invalid("grade must not be negative")
	}
	accountID, err := tempAccountID()
	if err != nil {
		return nil, err
	}

	student := &domain.Student{
		UserID:          p.UserID,
		Grade:           in.Grade,
		PointsAccountID: accountID,
		Level:           1,
		ParentIDs:       []string{},
		TeacherIDs:      []string{},
		Badges:          []string{},
	}
	if in.SchoolID != "" {
		school := in.SchoolID
		student.SchoolID = &school
	}

	created, err := uc.repos.Students.Create(ctx, student)
	if err != nil {
		return nil, err
	}

	if uc.accounts == nil {
		return created, nil
	}
	if err := uc.accounts.OpenPointsAccount(ctx, created.ID); err != nil {
		uc.log(ctx).Warn("failed to request points account", zap.String("student_id", created.ID), zap.Error(err))
		return created, nil
	}
	if fresh, err := uc.repos.Students.GetByID(ctx, created.ID); err == nil {
		return fresh, nil
	}
	return created, nil
}

// MyStudentProfile returns the caller's student profile with linked people expanded.
func (uc *UseCase) MyStudentProfile(ctx context.Context, p *domain.Principal) (*domain.StudentDetails, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	details, err := uc.repos.Students.Details(ctx, p.UserID)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return nil, domain.NotFound("Student profile not found")
	}
	return details, err
}

// StudentByUserID returns another user's student profile.
func (uc *UseCase) StudentByUserID(ctx context.Context, p *domain.Principal, userID string) (*domain.StudentDetails, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	details, err := uc.repos.Students.Details(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canReadStudent(p, &details.Student) {
		return nil, domain.Forbidden("Not authorized to view this student")
	}
	return details, nil
}

func (uc *UseCase) StudentByID(ctx context.Context, p *domain.Principal, id string) (*domain.Student, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	student, err := uc.repos.Students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canReadStudent(p, student) {
		return nil, domain.Forbidden("Not authorized to view this student")
	}
	return student, nil
}

// StudentPatch lists the fields a student profile update may change.
type StudentPatch struct {
	Grade *int
	Level *int
}

func (uc *UseCase) UpdateStudentProfile(ctx context.Context, p *domain.Principal, id string, patch StudentPatch) (*domain.Student, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	student, err := uc.repos.Students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.UserID != p.UserID && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("Not authorized to update this profile")
	}
	if patch.Grade != nil {
		if *patch.Grade < 0 {
			return nil, domain.Invalid("grade must not be negative")
		}
		student.Grade = *patch.Grade
	}
	if patch.Level != nil {
		if *patch.Level < 1 {
			return nil, domain.Invalid("level must be at least 1")
		}
		student.Level = *patch.Level
	}
	if err := uc.repos.Students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UpdatePointsAccount replaces the student's points account id.
func (uc *UseCase) UpdatePointsAccount(ctx context.Context, p *domain.Principal, id, accountID string) (*domain.Student, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(accountID) == "" {
		return nil, domain.Invalid("Points account ID is required")
	}
	student, err := uc.repos.Students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.UserID != p.UserID && !p.Role.IsAdmin() {
		return nil, domain.Forbidden("Not authorized to update this profile")
	}
	if err := uc.repos.Students.SetPointsAccount(ctx, id, accountID); err != nil {
		return nil, err
	}
	student.PointsAccountID = accountID
	return student, nil
}

// StudentLevel combines the stored level with the live balance. The balance is zero when the
// points service cannot be reached.
func (uc *UseCase) StudentLevel(ctx context.Context, p *domain.Principal, id string) (*domain.LevelProgress, error) {
	student, err := uc.StudentByID(ctx, p, id)
	if err != nil {
		return nil, err
	}
	balance := 0
	if uc.balances != nil {
		if balance, err = uc.balances.Balance(ctx, student.ID); err != nil {
			uc.log(ctx).Warn("points balance unavailable", zap.String("student_id", student.ID), zap.Error(err))
			balance = 0
		}
	}
	progress := domain.NewLevelProgress(student.Level, balance)
	return &progress, nil
}

func (uc *UseCase) StudentBadges(ctx context.Context, p *domain.Principal, id string) ([]domain.Badge, error) {
	student, err := uc.StudentByID(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return uc.repos.Students.Badges(ctx, student.Badges)
}

// canReadStudent allows the student, staff, admins and linked parents.
func canReadStudent(p *domain.Principal, s *domain.Student) bool {
	if s.UserID == p.UserID {
		return true
	}
	switch p.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin, domain.RoleSchoolAdmin,
		domain.RoleTeacher, domain.RoleSocialWorker:
		return true
	case domain.RoleParent:
		return s.HasParent(p.ProfileFor(domain.RoleParent)) || p.IsParentOf(s.ID)
	case domain.RoleStudent:
		return false
	default:
		return false
	}
}
