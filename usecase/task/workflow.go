package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/metrics"
)

// CompleteInput is the student's completion report.
type CompleteInput struct {
	Note     string
	Evidence []string
}

// CompleteTask marks a task done by an assigned student. Tasks without approval are approved by
// the system and awarded at once.
func (uc *UseCase) CompleteTask(ctx context.Context, p *domain.Principal, id string, in CompleteInput) (*domain.Task, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleStudent || !uc.studentSees(ctx, p, task) {
		return nil, domain.Forbidden("Only the assigned student can complete this task")
	}
	if task.Status == domain.StatusApproved {
		return nil, domain.ErrTaskAlreadyApproved
	}

	now := uc.now.Now()
	completion := domain.Completion{
		Note:        in.Note,
		Evidence:    in.Evidence,
		CompletedBy: p.ProfileFor(domain.RoleStudent),
		CompletedAt: now,
	}
	status := task.StatusAfterCompletion()
	var approval *domain.Approval
	if status == domain.StatusApproved {
		approval = &domain.Approval{
			ApprovedBy:   domain.SystemApprover,
			ApproverRole: domain.SystemApprover,
			ApprovalDate: now,
		}
	}

	updated, err := uc.tasks.Complete(ctx, task.ID, status, completion, approval)
	if err != nil {
		return nil, err
	}
	metrics.TaskTransitions.WithLabelValues(string(status)).Inc()

	if status == domain.StatusApproved {
		uc.AwardPointsForTask(ctx, updated, domain.SystemApprover, domain.SystemApprover)
		return updated, nil
	}

	approver := updated.SpecificApproverID
	if approver == "" {
		approver = updated.CreatedBy
	}
	uc.notify(ctx, domain.Notification{
		Type:        domain.NotifyTaskNeedsApproval,
		RecipientID: approver,
		Data: map[string]interface{}{
			"taskId":      updated.ID,
			"title":       updated.Title,
			"studentId":   completion.CompletedBy,
			"completedAt": completion.CompletedAt,
		},
	})
	return updated, nil
}

type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// ReviewTask approves or rejects a task awaiting approval. The transition is conditional on the
// stored status, so a task is awarded at most once even under concurrent reviews.
func (uc *UseCase) ReviewTask(ctx context.Context, p *domain.Principal, id string, action ReviewAction, feedback string) (*domain.Task, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if action != ActionApprove && action != ActionReject {
		return nil, domain.Invalid("Invalid action. Must be 'approve' or 'reject'")
	}
	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusPendingApproval {
		return nil, domain.ErrNotAwaitingApproval
	}
	if !canReview(p, task) {
		return nil, domain.Forbidden("Not authorized to review this task")
	}

	now := uc.now.Now()
	status := domain.StatusRejected
	if action == ActionApprove {
		status = domain.StatusApproved
	}
	approval := domain.Approval{
		ApprovedBy:   p.UserID,
		ApproverRole: string(p.Role),
		ApprovalDate: now,
	}
	var comment *domain.Comment
	if text := strings.TrimSpace(feedback); text != "" {
		comment = &domain.Comment{
			Text:        text,
			CreatedBy:   p.UserID,
			CreatorRole: p.Role,
			CreatedAt:   now,
		}
	}

	updated, err := uc.tasks.Review(ctx, task.ID, status, approval, comment)
	if err != nil {
		return nil, err
	}
	metrics.TaskTransitions.WithLabelValues(string(status)).Inc()

	kind := domain.NotifyTaskRejected
	if status == domain.StatusApproved {
		uc.AwardPointsForTask(ctx, updated, p.UserID, string(p.Role))
		kind = domain.NotifyTaskApproved
	}
	uc.notify(ctx, domain.Notification{
		Type:        kind,
		RecipientID: awardee(updated),
		Data: map[string]interface{}{
			"taskId":     updated.ID,
			"title":      updated.Title,
			"pointValue": updated.PointValue,
			"feedback":   feedback,
		},
	})
	return updated, nil
}

// AwardPointsForTask credits the task's point value to the student who completed it. Failures are
// logged and never reach the caller.
func (uc *UseCase) AwardPointsForTask(ctx context.Context, task *domain.Task, awardedBy, awardedByRole string) {
	if uc.ledger == nil || task == nil {
		return
	}
	student := awardee(task)
	if student == "" || task.PointValue <= 0 {
		uc.log(ctx).Debug("nothing to award", zap.String("task_id", task.ID))
		return
	}

	metadata := map[string]string{"category": task.Category}
	if task.SubCategory != "" {
		metadata["subCategory"] = task.SubCategory
	}
	if task.IsInstance() {
		metadata["parentTaskId"] = *task.ParentTaskID
	}

	err := uc.ledger.RecordTransaction(ctx, domain.PointsTransaction{
		StudentID:      student,
		Amount:         task.PointValue,
		Type:           domain.PointsEarned,
		Source:         task.PointsSource(),
		SourceID:       task.ID,
		Description:    "Completed task: " + task.Title,
		AwardedBy:      awardedBy,
		AwardedByRole:  awardedByRole,
		Metadata:       metadata,
		IdempotencyKey: "task-award:" + task.ID,
	})
	if err != nil {
		uc.log(ctx).Error("failed to award points",
			zap.String("task_id", task.ID),
			zap.String("student_id", student),
			zap.Error(err))
		return
	}
	metrics.PointsAwarded.Add(float64(task.PointValue))
}

// AddComment appends a comment and notifies the other side of the conversation.
func (uc *UseCase) AddComment(ctx context.Context, p *domain.Principal, id, text string) (*domain.Comment, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalid("Comment text is required")
	}
	task, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.permits(ctx, p, task, canComment) {
		return nil, domain.Forbidden("Not authorized to comment on this task")
	}

	comment := &domain.Comment{
		TaskID:      task.ID,
		Text:        text,
		CreatedBy:   p.UserID,
		CreatorRole: p.Role,
		CreatedAt:   uc.now.Now(),
	}
	if err := uc.tasks.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	data := map[string]interface{}{"taskId": task.ID, "title": task.Title, "comment": text}
	if task.CreatedBy != p.UserID {
		uc.notify(ctx, domain.Notification{Type: domain.NotifyTaskComment, RecipientID: task.CreatedBy, Data: data})
	} else if student := awardee(task); student != "" {
		uc.notify(ctx, domain.Notification{Type: domain.NotifyTaskComment, RecipientID: student, Data: data})
	} else {
		uc.notifyAssignees(ctx, task, domain.NotifyTaskComment, data)
	}
	return comment, nil
}

// awardee is the student credited for a task: whoever completed it, else the single selected
// student.
func awardee(t *domain.Task) string {
	if t.Completion != nil && t.Completion.CompletedBy != "" {
		return t.Completion.CompletedBy
	}
	if t.AssignedTo.Role == domain.RoleStudent && len(t.AssignedTo.SelectedPeopleIDs) == 1 {
		return t.AssignedTo.SelectedPeopleIDs[0]
	}
	return ""
}
