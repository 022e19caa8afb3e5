package repository

import (
	"context"
	"time"

	"github.com/amankumar-in/univance/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}

type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Student, error)
	Create(ctx context.Context, student *domain.Student) (*domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
	SetPointsAccount(ctx context.Context, id, accountID string) error
	Details(ctx context.Context, userID string) (*domain.StudentDetails, error)
	Badges(ctx context.Context, ids []string) ([]domain.Badge, error)
}

type ParentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Parent, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Parent, error)
	GetByLinkCode(ctx context.Context, code string) (*domain.Parent, error)
	Create(ctx context.Context, parent *domain.Parent) (*domain.Parent, error)
	Summaries(ctx context.Context, ids []string) ([]domain.PersonSummary, error)
}

type TeacherRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Teacher, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error)
	Create(ctx context.Context, teacher *domain.Teacher) (*domain.Teacher, error)
	UpdateSubjects(ctx context.Context, id string, subjects []string) error
}

type SchoolRepository interface {
	CreateSchool(ctx context.Context, school *domain.School) (*domain.School, error)
	GetSchool(ctx context.Context, id string) (*domain.School, error)
	CreateClass(ctx context.Context, class *domain.SchoolClass) (*domain.SchoolClass, error)
	GetClass(ctx context.Context, id string) (*domain.SchoolClass, error)
	GetClassByJoinCode(ctx context.Context, code string) (*domain.SchoolClass, error)
	ListClasses(ctx context.Context, ids []string) ([]domain.SchoolClass, error)
}

// LinkRepository writes both sides of a relationship atomically.
type LinkRepository interface {
	LinkParent(ctx context.Context, studentID, parentID string) error
	UnlinkParent(ctx context.Context, studentID, parentID string) error
	JoinClass(ctx context.Context, studentID string, class *domain.SchoolClass) error
	LeaveSchool(ctx context.Context, studentID, schoolID string) error
	// ApproveParentRequest marks the request approved and links both sides in one transaction.
	ApproveParentRequest(ctx context.Context, requestID, studentID, parentID string) error
}

type LinkRequestRepository interface {
	Create(ctx context.Context, request *domain.LinkRequest) (*domain.LinkRequest, error)
	GetPending(ctx context.Context, id, targetID string, kind domain.LinkRequestType) (*domain.LinkRequest, error)
	ListPending(ctx context.Context, targetID string, kind domain.LinkRequestType, initiator domain.Role) ([]domain.LinkRequest, error)
	SetStatus(ctx context.Context, id string, status domain.LinkRequestStatus) error
	RejectExpired(ctx context.Context, now time.Time) (int64, error)
}
