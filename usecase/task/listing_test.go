package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

func TestListTasks_Scope(t *testing.T) {
	parentTeacher := &domain.Principal{
		UserID: "dual-user",
		Role:   domain.RoleParent,
		Roles:  []domain.Role{domain.RoleParent, domain.RoleTeacher},
		Profiles: map[domain.Role]string{
			domain.RoleParent:  "parent-9",
			domain.RoleTeacher: "teacher-9",
		},
		ChildIDs: []string{"student-9"},
	}
	tests := []struct {
		name      string
		principal *domain.Principal
		in        ListInput
		want      repository.TaskScope
		errCode   domain.ErrorCode
	}{
		{
			name:      "student",
			principal: student,
			want:      repository.TaskScope{Role: domain.RoleStudent, ProfileID: "student-1", UserID: "student-user"},
		},
		{
			name:      "parent carries children",
			principal: parent,
			want: repository.TaskScope{
				Role: domain.RoleParent, ProfileID: "parent-1", UserID: "parent-user", ChildIDs: []string{"student-1"},
			},
		},
		{
			name:      "admin is unscoped",
			principal: admin,
			want:      repository.TaskScope{Role: domain.RolePlatformAdmin},
		},
		{
			name:      "switch to a held role",
			principal: parentTeacher,
			in:        ListInput{Role: domain.RoleTeacher},
			want: repository.TaskScope{
				Role: domain.RoleTeacher, ProfileID: "teacher-9", UserID: "dual-user", ChildIDs: []string{"student-9"},
			},
		},
		{
			name:      "switch to a role not held",
			principal: student,
			in:        ListInput{Role: domain.RoleTeacher},
			errCode:   domain.ErrCodeInvalid,
		},
		{
			name:      "unknown status",
			principal: student,
			in:        ListInput{Status: "finished"},
			errCode:   domain.ErrCodeInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			in := tt.in
			in.Page = domain.NewPage(1, 0)

			_, err := f.uc.ListTasks(context.Background(), tt.principal, in)
			if tt.errCode != "" {
				assert.True(t, domain.IsDomainError(err, tt.errCode))
				assert.Empty(t, f.tasks.filters)
				return
			}
			require.NoError(t, err)
			require.Len(t, f.tasks.filters, 1)
			assert.Equal(t, tt.want, f.tasks.filters[0].Scope)
		})
	}
}

func TestListTasks_FiltersAndPaging(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.uc.CreateTask(ctx, parent, choreFor("student-1"))
		require.NoError(t, err)
	}

	result, err := f.uc.ListTasks(ctx, admin, ListInput{
		AssignedRole: "student",
		Category:     "chores",
		Status:       "pending",
		Sort:         "createdAt",
		Order:        "DESC",
		Page:         domain.NewPage(2, 2),
	})
	require.NoError(t, err)

	require.Len(t, f.tasks.filters, 1)
	filter := f.tasks.filters[0]
	assert.Equal(t, "student", filter.AssignedRole)
	assert.Equal(t, "chores", filter.Category)
	assert.Equal(t, "pending", filter.Status)
	assert.Equal(t, "createdAt", filter.Sort)
	assert.True(t, filter.Desc)
	assert.Equal(t, 2, filter.Limit)
	assert.Equal(t, 2, filter.Offset)

	assert.Len(t, result.Tasks, 1)
	assert.Equal(t, domain.Pagination{Total: 3, Page: 2, Limit: 2, Pages: 2}, result.Pagination)
}

func TestListTasks_VisibleToChildren(t *testing.T) {
	twoChildren := &domain.Principal{
		UserID:   "parent-user",
		Role:     domain.RoleParent,
		Roles:    []domain.Role{domain.RoleParent},
		Profiles: map[domain.Role]string{domain.RoleParent: "parent-1"},
		ChildIDs: []string{"student-1", "student-2"},
	}
	f := setup(t)
	ctx := context.Background()

	both, err := f.uc.CreateTask(ctx, twoChildren, choreFor("student-1", "student-2"))
	require.NoError(t, err)
	onlyFirst, err := f.uc.CreateTask(ctx, twoChildren, choreFor("student-1"))
	require.NoError(t, err)

	_, err = f.uc.ToggleVisibility(ctx, twoChildren, ToggleVisibilityInput{TaskID: both.ID, StudentID: "student-2", IsVisible: boolPtr(false)})
	require.NoError(t, err)
	_, err = f.uc.ToggleVisibility(ctx, twoChildren, ToggleVisibilityInput{TaskID: onlyFirst.ID, StudentID: "student-2", IsVisible: boolPtr(true)})
	require.NoError(t, err)

	result, err := f.uc.ListTasks(ctx, twoChildren, ListInput{Page: domain.NewPage(1, 0)})
	require.NoError(t, err)

	visible := make(map[string][]string)
	for _, task := range result.Tasks {
		visible[task.ID] = task.VisibleToChildren
	}
	tests := []struct {
		name   string
		taskID string
		want   []string
	}{
		{name: "hidden child dropped", taskID: both.ID, want: []string{"student-1"}},
		{name: "revealed child added", taskID: onlyFirst.ID, want: []string{"student-1", "student-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visible[tt.taskID])
		})
	}
}

func TestTaskAccess_VisibilityOverrides(t *testing.T) {
	tests := []struct {
		name      string
		student   *domain.Principal
		studentID string
		visible   *bool
		allowed   bool
	}{
		{name: "assigned student", student: student, allowed: true},
		{name: "assigned student hidden", student: student, studentID: "student-1", visible: boolPtr(false)},
		{name: "unassigned student", student: otherStudent},
		{name: "unassigned student revealed", student: otherStudent, studentID: "student-2", visible: boolPtr(true), allowed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			task, err := f.uc.CreateTask(ctx, parent, choreFor("student-1"))
			require.NoError(t, err)
			if tt.visible != nil {
				_, err = f.uc.ToggleVisibility(ctx, admin, ToggleVisibilityInput{TaskID: task.ID, StudentID: tt.studentID, IsVisible: tt.visible})
				require.NoError(t, err)
			}

			_, viewErr := f.uc.GetTask(ctx, tt.student, task.ID)
			_, commentErr := f.uc.AddComment(ctx, tt.student, task.ID, "On it")
			_, completeErr := f.uc.CompleteTask(ctx, tt.student, task.ID, CompleteInput{})
			for _, err := range []error{viewErr, commentErr, completeErr} {
				if tt.allowed {
					assert.NoError(t, err)
				} else {
					assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
				}
			}
		})
	}
}
