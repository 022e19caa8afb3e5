package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
)

// LinkWithParent links the caller's student profile to the parent owning the code. Both sides
// are written in one transaction.
func (uc *UseCase) LinkWithParent(ctx context.Context, p *domain.Principal, code string) (*domain.Student, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.Invalid("Parent link code is required")
	}
	student, err := uc.ownStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	parent, err := uc.repos.Parents.GetByLinkCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrParentNotFound) {
			return nil, domain.NotFound("Invalid parent link code")
		}
		return nil, err
	}
	if student.HasParent(parent.ID) {
		return nil, domain.Invalid("Already linked with this parent")
	}
	if err := uc.repos.Links.LinkParent(ctx, student.ID, parent.ID); err != nil {
		return nil, err
	}
	uc.log(ctx).Info("student linked with parent", zap.String("student_id", student.ID), zap.String("parent_id", parent.ID))
	return uc.repos.Students.GetByID(ctx, student.ID)
}

// LinkWithSchool enrols the caller in the class owning the join code.
func (uc *UseCase) LinkWithSchool(ctx context.Context, p *domain.Principal, joinCode string) (*domain.Student, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	joinCode = strings.ToUpper(strings.TrimSpace(joinCode))
	if joinCode == "" {
		return nil, domain.Invalid("School join code is required")
	}
	student, err := uc.ownStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	class, err := uc.repos.Schools.GetClassByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, domain.ErrClassNotFound) {
			return nil, domain.NotFound("Invalid school code")
		}
		return nil, err
	}
	if err := uc.repos.Links.JoinClass(ctx, student.ID, class); err != nil {
		return nil, err
	}
	uc.log(ctx).Info("student joined class", zap.String("student_id", student.ID), zap.String("class_id", class.ID))
	return uc.repos.Students.GetByID(ctx, student.ID)
}

// UnlinkFromParent removes the relationship from both sides. The student, the parent and admins
// may do this.
func (uc *UseCase) UnlinkFromParent(ctx context.Context, p *domain.Principal, studentID, parentID string) error {
	if p == nil {
		return domain.ErrUnauthorized
	}
	if studentID == "" || parentID == "" {
		return domain.Invalid("studentId and parentId are required")
	}
	student, err := uc.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	allowed := student.UserID == p.UserID || p.Role.IsAdmin() ||
		(p.Role == domain.RoleParent && p.ProfileFor(domain.RoleParent) == parentID)
	if !allowed {
		return domain.Forbidden("Not authorized to unlink this relationship")
	}
	if !student.HasParent(parentID) {
		return domain.Invalid("Parent is not linked to this student")
	}
	return uc.repos.Links.UnlinkParent(ctx, studentID, parentID)
}

// UnlinkFromSchool removes the student from the school, its classes and their teachers.
func (uc *UseCase) UnlinkFromSchool(ctx context.Context, p *domain.Principal, studentID string) error {
	if p == nil {
		return domain.ErrUnauthorized
	}
	student, err := uc.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.SchoolID == nil || *student.SchoolID == "" {
		return domain.Invalid("Student is not linked to any school")
	}
	schoolID := *student.SchoolID

	allowed := student.UserID == p.UserID || p.Role == domain.RolePlatformAdmin
	if !allowed && p.Role == domain.RoleSchoolAdmin {
		allowed, err = uc.administers(ctx, p, schoolID)
		if err != nil {
			return err
		}
	}
	if !allowed {
		return domain.Forbidden("Not authorized to unlink from school")
	}
	return uc.repos.Links.LeaveSchool(ctx, studentID, schoolID)
}

func (uc *UseCase) ownStudent(ctx context.Context, p *domain.Principal) (*domain.Student, error) {
	student, err := uc.repos.Students.GetByUserID(ctx, p.UserID)
	if errors.Is(err, domain.ErrStudentNotFound) {
		return nil, domain.NotFound("Student profile not found")
	}
	return student, err
}

// administers reports whether the caller is an admin of the school.
func (uc *UseCase) administers(ctx context.Context, p *domain.Principal, schoolID string) (bool, error) {
	if p.SchoolID != "" && p.SchoolID == schoolID {
		return true, nil
	}
	school, err := uc.repos.Schools.GetSchool(ctx, schoolID)
	if err != nil {
		return false, err
	}
	for _, admin := range school.AdminIDs {
		if admin == p.UserID {
			return true, nil
		}
	}
	return false, nil
}
