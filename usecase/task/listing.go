package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

// ListInput is the parsed query of a task listing.
type ListInput struct {
	Role         domain.Role
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
	Order        string
	Page         domain.Page
}

type ListResult struct {
	Tasks      []domain.Task
	Pagination domain.Pagination
}

// ListTasks returns the tasks visible to the caller acting as in.Role. Admins see everything.
// Parents get visibleToChildren computed on each task.
func (uc *UseCase) ListTasks(ctx context.Context, p *domain.Principal, in ListInput) (*ListResult, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	actor := p
	if in.Role != "" && in.Role != p.Role {
		var err error
		if actor, err = p.WithRole(in.Role); err != nil {
			return nil, err
		}
	}
	if in.Status != "" {
		if _, err := domain.ParseTaskStatus(in.Status); err != nil {
			return nil, err
		}
	}

	filter := repository.TaskFilter{
		Scope:        scopeFor(actor),
		AssignedRole: in.AssignedRole,
		CreatedBy:    in.CreatedBy,
		Category:     in.Category,
		SubCategory:  in.SubCategory,
		SchoolID:     in.SchoolID,
		ClassID:      in.ClassID,
		Status:       in.Status,
		DueDate:      in.DueDate,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Sort:         in.Sort,
		Desc:         strings.EqualFold(in.Order, "desc"),
		Limit:        in.Page.Size,
		Offset:       in.Page.Offset(),
	}

	tasks, total, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleParent && len(actor.ChildIDs) > 0 && uc.visibility != nil {
		overrides, err := uc.visibility.ListForStudents(ctx, actor.ChildIDs)
		if err != nil {
			return nil, err
		}
		for i := range tasks {
			tasks[i].VisibleToChildren = domain.VisibleChildren(&tasks[i], actor.ChildIDs, overrides)
		}
	}

	return &ListResult{Tasks: tasks, Pagination: in.Page.Paginate(total)}, nil
}

func scopeFor(p *domain.Principal) repository.TaskScope {
	if p.Role.IsAdmin() {
		return repository.TaskScope{Role: p.Role}
	}
	return repository.TaskScope{
		Role:      p.Role,
		ProfileID: p.ProfileFor(p.Role),
		UserID:    p.UserID,
		ChildIDs:  p.ChildIDs,
	}
}

// ToggleVisibilityInput hides or reveals a task for one student.
type ToggleVisibilityInput struct {
	TaskID    string
	StudentID string
	IsVisible *bool
}

// ToggleVisibility upserts the override for (task, student); repeating it only refreshes the flag.
func (uc *UseCase) ToggleVisibility(ctx context.Context, p *domain.Principal, in ToggleVisibilityInput) (*domain.TaskVisibility, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if !canToggleVisibility(p) {
		return nil, domain.Forbidden("Not authorized to change task visibility")
	}
	if strings.TrimSpace(in.TaskID) == "" || strings.TrimSpace(in.StudentID) == "" || in.IsVisible == nil {
		return nil, domain.Invalid("taskId, studentId and isVisible are required")
	}
	if p.Role == domain.RoleParent && !p.IsParentOf(in.StudentID) {
		return nil, domain.Forbidden("Parents can only change visibility for their own children")
	}
	if _, err := uc.load(ctx, in.TaskID); err != nil {
		return nil, err
	}

	saved, err := uc.visibility.Upsert(ctx, &domain.TaskVisibility{
		TaskID:           in.TaskID,
		ToggledForUserID: in.StudentID,
		ToggledBy:        p.UserID,
		ToggleByRole:     p.Role,
		IsVisible:        *in.IsVisible,
	})
	if err != nil {
		return nil, err
	}
	uc.log(ctx).Info("task visibility toggled",
		zap.String("task_id", in.TaskID),
		zap.String("student_id", in.StudentID),
		zap.Bool("visible", *in.IsVisible))
	return saved, nil
}
