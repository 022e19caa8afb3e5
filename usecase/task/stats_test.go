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

func seedDashboard(m *memTasks) {
	at := func(days, hour int) *time.Time {
		v := time.Date(2024, time.March, 4+days, hour, 0, 0, 0, time.UTC)
		return &v
	}
	mine := domain.Assignment{Role: domain.RoleStudent, SelectedPeopleIDs: []string{"student-1"}}
	approved := func(when *time.Time) *domain.Approval {
		return &domain.Approval{ApprovedBy: "parent-user", ApproverRole: "parent", ApprovalDate: *when}
	}
	for _, t := range []domain.Task{
		{ID: "t1", Category: "chores", PointValue: 10, AssignedTo: mine, Status: domain.StatusPending, DueDate: at(1, 0)},
		{ID: "t2", Category: "chores", PointValue: 10, AssignedTo: mine, Status: domain.StatusPending, DueDate: at(-3, 0)},
		{ID: "t3", Category: "homework", PointValue: 5, AssignedTo: mine, Status: domain.StatusPendingApproval},
		{ID: "t4", Category: "homework", PointValue: 5, AssignedTo: mine, Status: domain.StatusApproved, Approval: approved(at(0, 8))},
		{ID: "t5", Category: "chores", PointValue: 10, AssignedTo: mine, Status: domain.StatusApproved, Approval: approved(at(-1, 18))},
		{ID: "t6", Category: "reading", PointValue: 3, AssignedTo: mine, Status: domain.StatusRejected},
		{ID: "t7", Category: "chores", PointValue: 10, Status: domain.StatusPending, DueDate: at(1, 0),
			AssignedTo: domain.Assignment{Role: domain.RoleStudent, SelectedPeopleIDs: []string{"student-2"}}},
		{ID: "t8", Category: "chores", PointValue: 10, AssignedTo: mine, Status: domain.StatusPending, IsDeleted: true},
	} {
		m.put(&t)
	}
}

func TestStudentSummary(t *testing.T) {
	f := setup(t)
	seedDashboard(f.tasks)

	summary, err := f.uc.StudentSummary(context.Background(), parent, "student-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCounts{
		TotalTasks:     6,
		PendingTasks:   2,
		CompletedTasks: 1,
		ApprovedTasks:  2,
		RejectedTasks:  1,
		ExpiredTasks:   1,
		DueSoonTasks:   1,
		Streak:         2,
	}, summary.Summary)
	assert.Equal(t, []domain.CategorySummary{
		{Category: "chores", Count: 3, Completed: 1, TotalPoints: 10},
		{Category: "homework", Count: 2, Completed: 2, TotalPoints: 5},
		{Category: "reading", Count: 1},
	}, summary.CategorySummary)
	require.Len(t, summary.UpcomingTasks, 1)
	assert.Equal(t, "t1", summary.UpcomingTasks[0].ID)
	assert.Len(t, summary.RecentlyCompletedTasks, 2)
}

func TestStudentSummary_Access(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		studentID string
		repoErr   error
		errCode   domain.ErrorCode
		wantErr   error
	}{
		{name: "own dashboard", principal: student, studentID: "student-1"},
		{name: "parent of student", principal: parent, studentID: "student-1"},
		{name: "teacher", principal: teacher, studentID: "student-1"},
		{name: "other student", principal: otherStudent, studentID: "student-1", errCode: domain.ErrCodeForbidden},
		{name: "parent of someone else", principal: parent, studentID: "student-2", errCode: domain.ErrCodeForbidden},
		{name: "missing student", principal: admin, errCode: domain.ErrCodeInvalid},
		{name: "query failure", principal: admin, studentID: "student-1", repoErr: errors.New("connection reset"), wantErr: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.tasks.studentErr = tt.repoErr

			summary, err := f.uc.StudentSummary(context.Background(), tt.principal, tt.studentID)
			switch {
			case tt.errCode != "":
				assert.True(t, domain.IsDomainError(err, tt.errCode))
			case tt.wantErr != nil:
				assert.EqualError(t, err, tt.wantErr.Error())
			default:
				require.NoError(t, err)
				assert.NotNil(t, summary.CategorySummary)
				assert.NotNil(t, summary.UpcomingTasks)
				assert.NotNil(t, summary.RecentlyCompletedTasks)
			}
		})
	}
}
