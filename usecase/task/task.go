package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/metrics"
	"github.com/amankumar-in/univance/pkg/logger"
	"github.com/amankumar-in/univance/repository"
	"github.com/amankumar-in/univance/usecase"
)

// notableShift is how far a point value must move before assignees are told about it.
const notableShift = 5

type UseCase struct {
	tasks      repository.TaskRepository
	visibility repository.VisibilityRepository
	ledger     usecase.PointsLedger
	notifier   usecase.Notifier
	logger     *zap.Logger
	now        usecase.Clock
}

func New(
	tasks repository.TaskRepository,
	visibility repository.VisibilityRepository,
	ledger usecase.PointsLedger,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:      tasks,
		visibility: visibility,
		ledger:     ledger,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateInput carries the fields accepted when creating a task.
type CreateInput struct {
	Title              string
	Description        string
	Category           string
	SubCategory        string
	PointValue         *int
	AssignedTo         *domain.Assignment
	DueDate            *time.Time
	IsRecurring        bool
	RecurringSchedule  *domain.RecurringSchedule
	RequiresApproval   *bool
	ApproverType       domain.ApproverType
	SpecificApproverID string
	SchoolID           string
	ClassID            string
	Difficulty         string
	ExternalResource   string
	Attachments        []string
	Metadata           map[string]string
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Category) == "" ||
		in.AssignedTo == nil || in.AssignedTo.Role == "" || in.PointValue == nil {
		return domain.Invalid("Missing required fields: title, category, assignedTo, and pointValue are required")
	}
	if *in.PointValue < 0 {
		return domain.Invalid("pointValue must not be negative")
	}
	if _, err := domain.ParseRole(string(in.AssignedTo.Role)); err != nil {
		return err
	}
	switch in.ApproverType {
	case "", domain.ApproverParent, domain.ApproverTeacher, domain.ApproverNone:
	default:
		return domain.Invalid("approverType must be parent, teacher or none")
	}
	if in.IsRecurring {
		return in.RecurringSchedule.Validate()
	}
	return nil
}

// CreateTask stores a new task, seeds the first instance of a recurring task and tells the
// assignees about it.
func (uc *UseCase) CreateTask(ctx context.Context, p *domain.Principal, in CreateInput) (*domain.Task, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Category:           in.Category,
		SubCategory:        in.SubCategory,
		PointValue:         *in.PointValue,
		CreatedBy:          p.UserID,
		CreatorRoles:       append([]domain.Role(nil), p.Roles...),
		AssignedTo:         *in.AssignedTo,
		Status:             domain.StatusPending,
		DueDate:            in.DueDate,
		IsRecurring:        in.IsRecurring,
		RequiresApproval:   true,
		ApproverType:       in.ApproverType,
		SpecificApproverID: in.SpecificApproverID,
		SchoolID:           in.SchoolID,
		ClassID:            in.ClassID,
		Difficulty:         in.Difficulty,
		ExternalResource:   in.ExternalResource,
		Attachments:        in.Attachments,
		Metadata:           in.Metadata,
	}
	if in.IsRecurring {
		task.RecurringSchedule = in.RecurringSchedule
	}
	if in.RequiresApproval != nil {
		task.RequiresApproval = *in.RequiresApproval
	}
	if task.ApproverType == "" {
		task.ApproverType = domain.DefaultApproverType(task.CreatorRoles)
	}
	if task.SpecificApproverID == "" {
		task.SpecificApproverID = p.UserID
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	metrics.TasksCreated.Inc()

	if created.IsRecurring && created.RecurringSchedule != nil {
		if _, _, err := uc.createRecurringInstance(ctx, created); err != nil {
			uc.log(ctx).Error("failed to create first recurring instance",
				zap.String("task_id", created.ID), zap.Error(err))
		}
	}

	uc.notifyAssignees(ctx, created, domain.NotifyTaskAssigned, map[string]interface{}{
		"taskId":     created.ID,
		"title":      created.Title,
		"dueDate":    created.DueDate,
		"pointValue": created.PointValue,
	})
	return created, nil
}

// GetTask returns a task the caller is allowed to see.
func (uc *UseCase) GetTask(ctx context.Context, p *domain.Principal, id string) (*domain.Task, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.permits(ctx, p, task, canView) {
		return task, nil
	}
	return nil, domain.Forbidden("Not authorized to view this task")
}

// UpdateInput lists the fields that may change after creation. Nil means untouched.
type UpdateInput = domain.TaskPatch

// UpdateTask applies a patch. Creator and creator roles are never changed.
func (uc *UseCase) UpdateTask(ctx context.Context, p *domain.Principal, id string, patch UpdateInput) (*domain.Task, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(p, task) {
		return nil, domain.Forbidden("Not authorized to update this task")
	}

	if patch.PointValue != nil && *patch.PointValue < 0 {
		return nil, domain.Invalid("pointValue must not be negative")
	}
	if patch.AssignedTo != nil {
		if _, err := domain.ParseRole(string(patch.AssignedTo.Role)); err != nil {
			return nil, err
		}
	}
	if patch.RecurringSchedule != nil {
		if err := patch.RecurringSchedule.Validate(); err != nil {
			return nil, err
		}
	}

	before := *task
	patch.Apply(task)
	if task.IsRecurring && task.IsInstance() {
		return nil, domain.Invalid("a recurring instance cannot itself recur")
	}
	if task.IsRecurring && task.RecurringSchedule == nil {
		return nil, domain.Invalid("recurringSchedule is required for recurring tasks")
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if dueDateChanged(before.DueDate, task.DueDate) || abs(task.PointValue-before.PointValue) > notableShift {
		uc.notifyAssignees(ctx, task, domain.NotifyTaskUpdated, map[string]interface{}{
			"taskId":     task.ID,
			"title":      task.Title,
			"dueDate":    task.DueDate,
			"pointValue": task.PointValue,
		})
	}
	return task, nil
}

// DeleteTask soft deletes a task. Deleting a template also removes its upcoming instances.
func (uc *UseCase) DeleteTask(ctx context.Context, p *domain.Principal, id string) error {
	if p == nil {
		return domain.ErrUnauthorized
	}
	task, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(p, task) {
		return domain.Forbidden("Not authorized to delete this task")
	}

	if err := uc.tasks.SoftDelete(ctx, id); err != nil {
		return err
	}
	if task.IsRecurring {
		removed, err := uc.tasks.SoftDeleteFutureInstances(ctx, id, domain.StartOfDay(uc.now.Now()))
		if err != nil {
			uc.log(ctx).Error("failed to delete future instances", zap.String("task_id", id), zap.Error(err))
		} else if removed > 0 {
			uc.log(ctx).Info("future instances deleted", zap.String("task_id", id), zap.Int64("count", removed))
		}
	}

	uc.notifyAssignees(ctx, task, domain.NotifyTaskDeleted, map[string]interface{}{
		"taskId": task.ID,
		"title":  task.Title,
	})
	return nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*domain.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("Invalid task ID format")
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil || task.IsDeleted {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// permits applies check to everyone but students, whose access follows the task's visibility
// override before its assignment.
func (uc *UseCase) permits(ctx context.Context, p *domain.Principal, task *domain.Task, check func(*domain.Principal, *domain.Task) bool) bool {
	if p.Role != domain.RoleStudent || task.CreatedBy == p.UserID {
		return check(p, task)
	}
	return uc.studentSees(ctx, p, task)
}

func (uc *UseCase) studentSees(ctx context.Context, p *domain.Principal, task *domain.Task) bool {
	studentID := p.ProfileFor(domain.RoleStudent)
	var override *domain.TaskVisibility
	if uc.visibility != nil {
		v, err := uc.visibility.Get(ctx, task.ID, studentID)
		if err != nil {
			uc.log(ctx).Warn("visibility lookup failed", zap.String("task_id", task.ID), zap.Error(err))
		} else {
			override = v
		}
	}
	return domain.VisibleToStudent(task, studentID, override)
}

func (uc *UseCase) notify(ctx context.Context, n domain.Notification) {
	if uc.notifier == nil || n.RecipientID == "" {
		return
	}
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.log(ctx).Warn("notification failed",
			zap.String("type", n.Type),
			zap.String("recipient", n.RecipientID),
			zap.Error(err))
	}
}

// notifyAssignees fans a notification out to the selected people. Broadcast tasks have no
// individual recipients.
func (uc *UseCase) notifyAssignees(ctx context.Context, task *domain.Task, kind string, data map[string]interface{}) {
	for _, recipient := range task.AssignedTo.SelectedPeopleIDs {
		uc.notify(ctx, domain.Notification{Type: kind, RecipientID: recipient, Data: data})
	}
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, uc.logger)
}

func dueDateChanged(before, after *time.Time) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	default:
		return !before.Equal(*after)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrTaskNotFound) || domain.IsDomainError(err, domain.ErrCodeNotFound)
}
