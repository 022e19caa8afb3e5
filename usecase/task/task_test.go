package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumar-in/univance/domain"
)

var (
	parent = &domain.Principal{
		UserID:   "parent-user",
		Role:     domain.RoleParent,
		Roles:    []domain.Role{domain.RoleParent},
		Profiles: map[domain.Role]string{domain.RoleParent: "parent-1"},
		ChildIDs: []string{"student-1"},
	}
	student = &domain.Principal{
		UserID:   "student-user",
		Role:     domain.RoleStudent,
		Roles:    []domain.Role{domain.RoleStudent},
		Profiles: map[domain.Role]string{domain.RoleStudent: "student-1"},
	}
	otherStudent = &domain.Principal{
		UserID:   "student-user-2",
		Role:     domain.RoleStudent,
		Roles:    []domain.Role{domain.RoleStudent},
		Profiles: map[domain.Role]string{domain.RoleStudent: "student-2"},
	}
	teacher = &domain.Principal{
		UserID:   "teacher-user",
		Role:     domain.RoleTeacher,
		Roles:    []domain.Role{domain.RoleTeacher},
		Profiles: map[domain.Role]string{domain.RoleTeacher: "teacher-1"},
	}
	admin = &domain.Principal{
		UserID: "admin-user",
		Role:   domain.RolePlatformAdmin,
		Roles:  []domain.Role{domain.RolePlatformAdmin},
	}
)

var fixedNow = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	uc         *UseCase
	tasks      *memTasks
	visibility *memVisibility
	ledger     *recordingLedger
	notifier   *recordingNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tasks:      newMemTasks(),
		visibility: newMemVisibility(),
		ledger:     &recordingLedger{},
		notifier:   &recordingNotifier{},
	}
	f.uc = New(f.tasks, f.visibility, f.ledger, f.notifier, nil)
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func choreFor(students ...string) CreateInput {
	return CreateInput{
		Title:      "Tidy room",
		Category:   "chores",
		PointValue: intPtr(10),
		AssignedTo: &domain.Assignment{Role: domain.RoleStudent, SelectedPeopleIDs: students},
	}
}

func TestCreateTask_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateInput
		wantMsg string
	}{
		{
			name:    "missing fields",
			in:      CreateInput{Title: "x"},
			wantMsg: "Missing required fields: title, category, assignedTo, and pointValue are required",
		},
		{
			name: "negative points",
			in: CreateInput{Title: "x", Category: "c", PointValue: intPtr(-1),
				AssignedTo: &domain.Assignment{Role: domain.RoleStudent}},
			wantMsg: "pointValue must not be negative",
		},
		{
			name: "unknown role",
			in: CreateInput{Title: "x", Category: "c", PointValue: intPtr(1),
				AssignedTo: &domain.Assignment{Role: "janitor"}},
			wantMsg: `unknown role "janitor"`,
		},
		{
			name: "recurring without schedule",
			in: CreateInput{Title: "x", Category: "c", PointValue: intPtr(1), IsRecurring: true,
				AssignedTo: &domain.Assignment{Role: domain.RoleStudent}},
			wantMsg: "recurringSchedule is required for recurring tasks",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateTask(ctx, parent, tt.in)
			var dErr *domain.Error
			require.True(t, errors.As(err, &dErr))
			assert.Equal(t, domain.ErrCodeInvalid, dErr.Code)
			assert.Equal(t, tt.wantMsg, dErr.Message)
		})
	}

	_, err := f.uc.CreateTask(ctx, nil, choreFor("student-1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateTask_Defaults(t *testing.T) {
	f := setup(t)

	task, err := f.uc.CreateTask(context.Background(), parent, choreFor("student-1", "student-2"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, task.Status)
	assert.True(t, task.RequiresApproval)
	assert.Equal(t, domain.ApproverParent, task.ApproverType)
	assert.Equal(t, parent.UserID, task.SpecificApproverID)
	assert.Equal(t, []domain.Role{domain.RoleParent}, task.CreatorRoles)
	assert.Len(t, f.notifier.ofType(domain.NotifyTaskAssigned), 2)
}

func TestCreateTask_RecurringSeedsFirstInstance(t *testing.T) {
	f := setup(t)
	due := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	in := choreFor("student-1")
	in.DueDate = &due
	in.IsRecurring = true
	in.RecurringSchedule = &domain.RecurringSchedule{Frequency: domain.FrequencyDaily}

	template, err := f.uc.CreateTask(context.Background(), parent, in)
	require.NoError(t, err)

	instances := f.tasks.instancesOf(template.ID)
	require.Len(t, instances, 1)
	assert.Equal(t, due, *instances[0].InstanceDate)
	assert.False(t, instances[0].IsRecurring)

	again, err := f.uc.CreateRecurringTaskInstance(context.Background(), template.ID)
	require.NoError(t, err)
	assert.Equal(t, instances[0].ID, again.ID)
	assert.Len(t, f.tasks.instancesOf(template.ID), 1)
}

func TestCompleteTask_WithoutApprovalAwardsImmediately(t *testing.T) {
	f := setup(t)
	in := choreFor("student-1")
	in.RequiresApproval = boolPtr(false)
	task, err := f.uc.CreateTask(context.Background(), parent, in)
	require.NoError(t, err)

	done, err := f.uc.CompleteTask(context.Background(), student, task.ID, CompleteInput{Note: "done"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, done.Status)
	require.NotNil(t, done.Approval)
	assert.Equal(t, domain.SystemApprover, done.Approval.ApprovedBy)

	require.Len(t, f.ledger.txs, 1)
	tx := f.ledger.txs[0]
	assert.Equal(t, "student-1", tx.StudentID)
	assert.Equal(t, 10, tx.Amount)
	assert.Equal(t, domain.PointsEarned, tx.Type)
	assert.Equal(t, "task", tx.Source)
	assert.Equal(t, "task-award:"+task.ID, tx.IdempotencyKey)
	assert.Equal(t, "Completed task: Tidy room", tx.Description)

	_, err = f.uc.CompleteTask(context.Background(), student, task.ID, CompleteInput{})
	assert.ErrorIs(t, err, domain.ErrTaskAlreadyApproved)
	assert.Len(t, f.ledger.txs, 1)
}

func TestCompleteTask_OnlyAssignedStudent(t *testing.T) {
	f := setup(t)
	task, err := f.uc.CreateTask(context.Background(), parent, choreFor("student-1"))
	require.NoError(t, err)

	_, err = f.uc.CompleteTask(context.Background(), otherStudent, task.ID, CompleteInput{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = f.uc.CompleteTask(context.Background(), parent, task.ID, CompleteInput{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestCompleteTask_RevealedByOverride(t *testing.T) {
	f := setup(t)
	task, err := f.uc.CreateTask(context.Background(), parent, choreFor("student-1"))
	require.NoError(t, err)

	_, err = f.uc.ToggleVisibility(context.Background(), admin, ToggleVisibilityInput{
		TaskID: task.ID, StudentID: "student-2", IsVisible: boolPtr(true),
	})
	require.NoError(t, err)

	done, err := f.uc.CompleteTask(context.Background(), otherStudent, task.ID, CompleteInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, done.Status)
}

func TestReviewTask_AwardsOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task, err := f.uc.CreateTask(ctx, parent, choreFor("student-1"))
	require.NoError(t, err)

	completed, err := f.uc.CompleteTask(ctx, student, task.ID, CompleteInput{Note: "finished"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, completed.Status)
	assert.Len(t, f.notifier.ofType(domain.NotifyTaskNeedsApproval), 1)
	assert.Empty(t, f.ledger.txs)

	_, err = f.uc.ReviewTask(ctx, teacher, task.ID, ActionApprove, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	approved, err := f.uc.ReviewTask(ctx, parent, task.ID, ActionApprove, "Nice work")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	assert.Equal(t, parent.UserID, approved.Approval.ApprovedBy)
	require.Len(t, approved.Comments, 1)
	assert.Equal(t, "Nice work", approved.Comments[0].Text)

	_, err = f.uc.ReviewTask(ctx, parent, task.ID, ActionApprove, "")
	assert.ErrorIs(t, err, domain.ErrNotAwaitingApproval)

	require.Len(t, f.ledger.txs, 1)
	assert.Equal(t, parent.UserID, f.ledger.txs[0].AwardedBy)
	assert.Equal(t, "parent", f.ledger.txs[0].AwardedByRole)
	assert.Len(t, f.notifier.ofType(domain.NotifyTaskApproved), 1)
}

func TestReviewTask_DesignatedApprover(t *testing.T) {
	coParent := &domain.Principal{
		UserID:   "other-parent-user",
		Role:     domain.RoleParent,
		Roles:    []domain.Role{domain.RoleParent},
		Profiles: map[domain.Role]string{domain.RoleParent: "parent-2"},
		ChildIDs: []string{"student-1"},
	}
	tests := []struct {
		name      string
		approver  string
		reviewer  *domain.Principal
		forbidden bool
	}{
		{name: "creator without designated approver", reviewer: parent},
		{name: "designated approver", approver: coParent.UserID, reviewer: coParent},
		{name: "creator when another parent is designated", approver: coParent.UserID, reviewer: parent, forbidden: true},
		{name: "other parent when creator is approver", reviewer: coParent, forbidden: true},
		{name: "platform admin", approver: coParent.UserID, reviewer: admin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			in := choreFor("student-1")
			in.SpecificApproverID = tt.approver
			task, err := f.uc.CreateTask(ctx, parent, in)
			require.NoError(t, err)
			_, err = f.uc.CompleteTask(ctx, student, task.ID, CompleteInput{})
			require.NoError(t, err)

			reviewed, err := f.uc.ReviewTask(ctx, tt.reviewer, task.ID, ActionApprove, "")
			if tt.forbidden {
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
				assert.Empty(t, f.ledger.txs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusApproved, reviewed.Status)
			assert.Len(t, f.ledger.txs, 1)
		})
	}
}

func TestReviewTask_Reject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task, err := f.uc.CreateTask(ctx, parent, choreFor("student-1"))
	require.NoError(t, err)
	_, err = f.uc.CompleteTask(ctx, student, task.ID, CompleteInput{})
	require.NoError(t, err)

	_, err = f.uc.ReviewTask(ctx, parent, task.ID, "maybe", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	rejected, err := f.uc.ReviewTask(ctx, parent, task.ID, ActionReject, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Empty(t, f.ledger.txs)
	assert.Len(t, f.notifier.ofType(domain.NotifyTaskRejected), 1)
}

func TestAwardPointsForTask_FailureIsSwallowed(t *testing.T) {
	f := setup(t)
	f.ledger.err = errors.New("points service down")
	task := &domain.Task{
		ID:         "t1",
		Title:      "Attend",
		Category:   "attendance",
		PointValue: 5,
		Completion: &domain.Completion{CompletedBy: "student-1"},
	}

	assert.NotPanics(t, func() {
		f.uc.AwardPointsForTask(context.Background(), task, "system", "system")
	})
	assert.Empty(t, f.ledger.txs)
}

func TestGenerateNextInstance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	in := choreFor("student-1")
	in.DueDate = &due
	in.IsRecurring = true
	in.RecurringSchedule = &domain.RecurringSchedule{Frequency: domain.FrequencyWeekly, EndDate: &end}

	template, err := f.uc.CreateTask(ctx, parent, in)
	require.NoError(t, err)
	first := f.tasks.instancesOf(template.ID)[0]

	_, err = f.uc.GenerateNextInstance(ctx, parent, template.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "templates are not instances")

	_, err = f.uc.GenerateNextInstance(ctx, teacher, first.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	next, err := f.uc.GenerateNextInstance(ctx, parent, first.ID)
	require.NoError(t, err)
	require.True(t, next.Created)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), *next.Task.InstanceDate)

	again, err := f.uc.GenerateNextInstance(ctx, parent, first.ID)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, next.Task.ID, again.Task.ID)

	ended, err := f.uc.GenerateNextInstance(ctx, parent, next.Task.ID)
	require.NoError(t, err)
	assert.True(t, ended.Ended)
	assert.Nil(t, ended.Task)
}

func TestSweepRecurring(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	in := choreFor("student-1")
	in.DueDate = &due
	in.IsRecurring = true
	in.RecurringSchedule = &domain.RecurringSchedule{Frequency: domain.FrequencyDaily}

	template, err := f.uc.CreateTask(ctx, parent, in)
	require.NoError(t, err)

	created, err := f.uc.SweepRecurring(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	instances := f.tasks.instancesOf(template.ID)
	require.Len(t, instances, 2)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), *instances[1].InstanceDate)

	created, err = f.uc.SweepRecurring(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "the March 4 instance is due at 09:00")

	created, err = f.uc.SweepRecurring(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestDeleteTask_RemovesUpcomingInstances(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	in := choreFor("student-1")
	in.DueDate = &due
	in.IsRecurring = true
	in.RecurringSchedule = &domain.RecurringSchedule{Frequency: domain.FrequencyDaily}

	template, err := f.uc.CreateTask(ctx, parent, in)
	require.NoError(t, err)
	require.Len(t, f.tasks.instancesOf(template.ID), 1)

	assert.True(t, domain.IsDomainError(f.uc.DeleteTask(ctx, student, template.ID), domain.ErrCodeForbidden))
	require.NoError(t, f.uc.DeleteTask(ctx, parent, template.ID))

	assert.Empty(t, f.tasks.instancesOf(template.ID))
	_, err = f.uc.GetTask(ctx, parent, template.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateTask(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task, err := f.uc.CreateTask(ctx, parent, choreFor("student-1"))
	require.NoError(t, err)

	_, err = f.uc.UpdateTask(ctx, student, task.ID, UpdateInput{Title: strPtr("Hacked")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	updated, err := f.uc.UpdateTask(ctx, parent, task.ID, UpdateInput{PointValue: intPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.PointValue)
	assert.Equal(t, parent.UserID, updated.CreatedBy)
	assert.Len(t, f.notifier.ofType(domain.NotifyTaskUpdated), 1, "a shift above five points is notable")

	_, err = f.uc.UpdateTask(ctx, parent, task.ID, UpdateInput{PointValue: intPtr(32)})
	require.NoError(t, err)
	assert.Len(t, f.notifier.ofType(domain.NotifyTaskUpdated), 1)
}

func TestToggleVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	task, err := f.uc.CreateTask(ctx, parent, choreFor("student-1"))
	require.NoError(t, err)

	_, err = f.uc.ToggleVisibility(ctx, student, ToggleVisibilityInput{TaskID: task.ID, StudentID: "student-1", IsVisible: boolPtr(false)})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = f.uc.ToggleVisibility(ctx, parent, ToggleVisibilityInput{TaskID: task.ID, StudentID: "student-9", IsVisible: boolPtr(false)})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = f.uc.ToggleVisibility(ctx, parent, ToggleVisibilityInput{TaskID: task.ID, StudentID: "student-1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	first, err := f.uc.ToggleVisibility(ctx, parent, ToggleVisibilityInput{TaskID: task.ID, StudentID: "student-1", IsVisible: boolPtr(false)})
	require.NoError(t, err)
	second, err := f.uc.ToggleVisibility(ctx, parent, ToggleVisibilityInput{TaskID: task.ID, StudentID: "student-1", IsVisible: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeated toggles upsert one row")
	assert.True(t, second.IsVisible)
}

func TestStatistics_Access(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.Statistics(ctx, student, domain.GroupByCategory, domain.StatsFilter{StudentID: "student-2"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = f.uc.Statistics(ctx, parent, domain.GroupByCategory, domain.StatsFilter{StudentID: "student-9"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	start := fixedNow
	end := fixedNow.AddDate(0, 0, -1)
	_, err = f.uc.Statistics(ctx, admin, domain.GroupByCategory, domain.StatsFilter{StartDate: &start, EndDate: &end})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCanView(t *testing.T) {
	classTask := &domain.Task{CreatedBy: "someone", ClassID: "class-1", AssignedTo: domain.Assignment{Role: domain.RoleStudent, SelectedPeopleIDs: []string{"student-3"}}}
	childTask := &domain.Task{CreatedBy: "someone", AssignedTo: domain.Assignment{Role: domain.RoleStudent, SelectedPeopleIDs: []string{"student-1"}}}
	social := &domain.Principal{UserID: "sw", Role: domain.RoleSocialWorker}
	unknown := &domain.Principal{UserID: "x", Role: "janitor"}

	tests := []struct {
		name string
		p    *domain.Principal
		task *domain.Task
		want bool
	}{
		{name: "admin sees all", p: admin, task: classTask, want: true},
		{name: "teacher sees class tasks", p: teacher, task: classTask, want: true},
		{name: "parent sees child task", p: parent, task: childTask, want: true},
		{name: "parent does not see class task", p: parent, task: classTask, want: false},
		{name: "student sees own task", p: student, task: childTask, want: true},
		{name: "other student denied", p: otherStudent, task: childTask, want: false},
		{name: "social worker not assigned", p: social, task: childTask, want: false},
		{name: "unknown role denied", p: unknown, task: classTask, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canView(tt.p, tt.task))
		})
	}
}

func strPtr(v string) *string { return &v }
