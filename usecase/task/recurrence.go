package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/metrics"
)

// createRecurringInstance inserts the first instance of a freshly created template.
func (uc *UseCase) createRecurringInstance(ctx context.Context, template *domain.Task) (*domain.Task, bool, error) {
	date := template.RecurringSchedule.FirstInstanceDate(template.DueDate, uc.now.Now())
	return uc.insertInstance(ctx, template, date)
}

// CreateRecurringTaskInstance seeds the first instance of a recurring template. It is a no-op
// returning the existing row when that instance is already present.
func (uc *UseCase) CreateRecurringTaskInstance(ctx context.Context, templateID string) (*domain.Task, error) {
	template, err := uc.load(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsRecurring || template.RecurringSchedule == nil {
		return nil, domain.Invalid("Task is not recurring")
	}
	instance, _, err := uc.createRecurringInstance(ctx, template)
	return instance, err
}

// NextInstanceResult describes the outcome of GenerateNextInstance. Ended is set, with a nil
// Task, once the schedule's end date has passed.
type NextInstanceResult struct {
	Task    *domain.Task
	Created bool
	Ended   bool
}

// GenerateNextInstance creates the occurrence following an existing instance. Calling it again
// for the same instance returns the already generated task.
func (uc *UseCase) GenerateNextInstance(ctx context.Context, p *domain.Principal, instanceID string) (*NextInstanceResult, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	instance, err := uc.load(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !instance.IsInstance() {
		return nil, domain.Invalid("Task is not a recurring instance")
	}
	template, err := uc.load(ctx, *instance.ParentTaskID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.Invalid("Parent task not found or is not recurring")
		}
		return nil, err
	}
	if !template.IsRecurring || template.RecurringSchedule == nil {
		return nil, domain.Invalid("Parent task not found or is not recurring")
	}
	if template.CreatedBy != p.UserID && p.Role != domain.RolePlatformAdmin {
		return nil, domain.Forbidden("Not authorized to generate instances for this task")
	}

	next, ok := template.RecurringSchedule.NextInstanceDate(instanceAnchor(instance, uc.now.Now()))
	if !ok {
		return &NextInstanceResult{Ended: true}, nil
	}
	task, created, err := uc.insertInstance(ctx, template, next)
	if err != nil {
		return nil, err
	}
	return &NextInstanceResult{Task: task, Created: created}, nil
}

// SweepRecurring generates the next instance of every template whose latest instance is already
// due. Each run advances a template by one occurrence.
func (uc *UseCase) SweepRecurring(ctx context.Context) (int, error) {
	now := uc.now.Now()
	latest, err := uc.tasks.DueRecurringInstances(ctx, now)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range latest {
		instance := &latest[i]
		if !instance.IsInstance() {
			continue
		}
		template, err := uc.tasks.GetByID(ctx, *instance.ParentTaskID)
		if err != nil {
			if !isNotFound(err) {
				uc.log(ctx).Warn("recurrence sweep: template lookup failed",
					zap.String("task_id", *instance.ParentTaskID), zap.Error(err))
			}
			continue
		}
		if !template.IsRecurring || template.RecurringSchedule == nil {
			continue
		}
		next, ok := template.RecurringSchedule.NextInstanceDate(instanceAnchor(instance, now))
		if !ok {
			continue
		}
		if _, fresh, err := uc.insertInstance(ctx, template, next); err != nil {
			uc.log(ctx).Warn("recurrence sweep: instance insert failed",
				zap.String("task_id", template.ID), zap.Error(err))
		} else if fresh {
			created++
		}
	}
	return created, nil
}

func (uc *UseCase) insertInstance(ctx context.Context, template *domain.Task, on time.Time) (*domain.Task, bool, error) {
	instance, created, err := uc.tasks.CreateInstance(ctx, template.NewInstance(on))
	if err != nil {
		return nil, false, err
	}
	if created {
		metrics.TasksCreated.Inc()
		uc.notifyAssignees(ctx, instance, domain.NotifyTaskAssigned, map[string]interface{}{
			"taskId":     instance.ID,
			"title":      instance.Title,
			"dueDate":    instance.DueDate,
			"pointValue": instance.PointValue,
		})
	}
	return instance, created, nil
}

// instanceAnchor is the date the next occurrence is computed from.
func instanceAnchor(instance *domain.Task, now time.Time) time.Time {
	switch {
	case instance.InstanceDate != nil:
		return *instance.InstanceDate
	case instance.DueDate != nil:
		return *instance.DueDate
	default:
		return domain.StartOfDay(now)
	}
}
