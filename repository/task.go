package repository

import (
	"context"
	"time"

	"github.com/amankumar-in/univance/domain"
)

// TaskScope narrows a listing to what a role may see. Admin roles are not narrowed.
type TaskScope struct {
	Role      domain.Role
	ProfileID string
	UserID    string
	ChildIDs  []string
}

type TaskFilter struct {
	Scope        TaskScope
	AssignedRole string
	CreatedBy    string
	Category     string
	SubCategory  string
	SchoolID     string
	ClassID      string
	Status       string
	DueDate      *time.Time
	StartDate    *time.Time
	EndDate      *time.Time
	Sort         string
	Desc         bool
	Limit        int
	Offset       int
}

// StudentTaskQuery selects a student's tasks for dashboards.
type StudentTaskQuery struct {
	Status    domain.TaskStatus
	DueAfter  *time.Time
	DueBefore *time.Time
	Recent    bool
	Limit     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	SoftDelete(ctx context.Context, id string) error
	SoftDeleteFutureInstances(ctx context.Context, parentID string, from time.Time) (int64, error)

	// Complete records a completion unless the task is already approved.
	Complete(ctx context.Context, id string, status domain.TaskStatus, completion domain.Completion, approval *domain.Approval) (*domain.Task, error)
	// Review moves a task out of pending_approval. It fails with ErrNotAwaitingApproval
	// when another reviewer got there first.
	Review(ctx context.Context, id string, status domain.TaskStatus, approval domain.Approval, feedback *domain.Comment) (*domain.Task, error)
	AddComment(ctx context.Context, comment *domain.Comment) error

	FindInstance(ctx context.Context, parentID string, instanceDate time.Time) (*domain.Task, error)
	// CreateInstance inserts unless a live instance exists for (parent, date). created is false
	// when the existing instance is returned instead.
	CreateInstance(ctx context.Context, instance *domain.Task) (task *domain.Task, created bool, err error)
	// DueRecurringInstances returns the latest live instance of every recurring template whose
	// latest instance is due at or before the cutoff.
	DueRecurringInstances(ctx context.Context, cutoff time.Time) ([]domain.Task, error)

	Statistics(ctx context.Context, groupBy domain.StatsGroupBy, filter domain.StatsFilter) ([]domain.StatsGroup, domain.StatsSummary, error)
	CountStudentTasks(ctx context.Context, studentID string, query StudentTaskQuery) (int, error)
	StudentTasks(ctx context.Context, studentID string, query StudentTaskQuery) ([]domain.Task, error)
	StudentCategorySummary(ctx context.Context, studentID string) ([]domain.CategorySummary, error)
	StudentApprovalDates(ctx context.Context, studentID string, since time.Time) ([]time.Time, error)
}

type VisibilityRepository interface {
	Upsert(ctx context.Context, visibility *domain.TaskVisibility) (*domain.TaskVisibility, error)
	Get(ctx context.Context, taskID, studentID string) (*domain.TaskVisibility, error)
	ListForStudents(ctx context.Context, studentIDs []string) ([]domain.TaskVisibility, error)
}

type CategoryFilter struct {
	Type       string
	SchoolID   string
	ParentID   string
	CreatedBy  string
	Visibility []domain.CategoryVisibility
	Active     *bool
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TaskCategory, error)
	List(ctx context.Context, filter CategoryFilter) ([]domain.TaskCategory, error)
	Create(ctx context.Context, category *domain.TaskCategory) (*domain.TaskCategory, error)
	Update(ctx context.Context, category *domain.TaskCategory) error
	Deactivate(ctx context.Context, id string) error
	// EnsureSystem inserts system categories that do not exist yet, by name.
	EnsureSystem(ctx context.Context, categories []domain.TaskCategory) ([]domain.TaskCategory, error)
}
