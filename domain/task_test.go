package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignment_Includes(t *testing.T) {
	all := Assignment{Role: RoleStudent}
	some := Assignment{Role: RoleStudent, SelectedPeopleIDs: []string{"s1", "s2"}}

	assert.True(t, all.Broadcast())
	assert.True(t, all.Includes(RoleStudent, "anyone"))
	assert.False(t, all.Includes(RoleParent, "anyone"))
	assert.True(t, some.Includes(RoleStudent, "s2"))
	assert.False(t, some.Includes(RoleStudent, "s3"))
}

func TestTask_NewInstance(t *testing.T) {
	template := &Task{
		ID:                "tpl",
		Title:             "Read",
		Category:          "homework",
		PointValue:        10,
		CreatedBy:         "u1",
		CreatorRoles:      []Role{RoleParent},
		AssignedTo:        Assignment{Role: RoleStudent, SelectedPeopleIDs: []string{"s1"}},
		Status:            StatusApproved,
		IsRecurring:       true,
		RecurringSchedule: &RecurringSchedule{Frequency: FrequencyDaily},
		RequiresApproval:  true,
		ApproverType:      ApproverParent,
		Attachments:       []string{"a.png"},
	}
	on := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)

	instance := template.NewInstance(on)
	require.True(t, instance.IsInstance())
	assert.Equal(t, "tpl", *instance.ParentTaskID)
	assert.Equal(t, on, *instance.DueDate)
	assert.Equal(t, on, *instance.InstanceDate)
	assert.Equal(t, StatusPending, instance.Status)
	assert.False(t, instance.IsRecurring)
	assert.Nil(t, instance.RecurringSchedule)
	assert.Equal(t, template.AssignedTo, instance.AssignedTo)
	assert.Equal(t, ApproverParent, instance.ApproverType)

	instance.Attachments[0] = "b.png"
	assert.Equal(t, "a.png", template.Attachments[0], "instances do not share slices with the template")
	assert.False(t, template.IsInstance())
}

func TestTask_StatusAfterCompletion(t *testing.T) {
	assert.Equal(t, StatusPendingApproval, (&Task{RequiresApproval: true}).StatusAfterCompletion())
	assert.Equal(t, StatusApproved, (&Task{}).StatusAfterCompletion())
}

func TestTask_PointsSource(t *testing.T) {
	assert.Equal(t, "attendance", (&Task{Category: "attendance"}).PointsSource())
	assert.Equal(t, "task", (&Task{Category: "chores"}).PointsSource())
}

func TestTaskPatch_Apply(t *testing.T) {
	task := &Task{Title: "Old", PointValue: 5, Description: "keep"}
	title := "New"
	points := 15
	TaskPatch{Title: &title, PointValue: &points}.Apply(task)

	assert.Equal(t, "New", task.Title)
	assert.Equal(t, 15, task.PointValue)
	assert.Equal(t, "keep", task.Description)
}

func TestParseTaskStatus(t *testing.T) {
	status, err := ParseTaskStatus("pending_approval")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, status)

	_, err = ParseTaskStatus("done")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestNewLevelProgress(t *testing.T) {
	assert.Equal(t, LevelProgress{Level: 1, CurrentPoints: 0, PointsNeededForNextLevel: 100}, NewLevelProgress(0, 0))
	assert.Equal(t, LevelProgress{Level: 3, CurrentPoints: 250, PointsNeededForNextLevel: 50, ProgressPercentage: 50}, NewLevelProgress(3, 250))
}

func TestReward_InStock(t *testing.T) {
	assert.True(t, (&Reward{}).InStock())
	assert.True(t, (&Reward{LimitedQuantity: true, Quantity: 1}).InStock())
	assert.False(t, (&Reward{LimitedQuantity: true}).InStock())
	var none *Reward
	assert.False(t, none.InStock())
}
