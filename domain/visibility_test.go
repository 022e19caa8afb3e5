package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleToStudent(t *testing.T) {
	broadcast := &Task{ID: "t1", AssignedTo: Assignment{Role: RoleStudent}}
	selected := &Task{ID: "t2", AssignedTo: Assignment{Role: RoleStudent, SelectedPeopleIDs: []string{"s1"}}}

	assert.True(t, VisibleToStudent(broadcast, "s9", nil))
	assert.True(t, VisibleToStudent(selected, "s1", nil))
	assert.False(t, VisibleToStudent(selected, "s2", nil))

	hide := &TaskVisibility{TaskID: "t2", ToggledForUserID: "s1", IsVisible: false}
	assert.False(t, VisibleToStudent(selected, "s1", hide))

	show := &TaskVisibility{TaskID: "t2", ToggledForUserID: "s2", IsVisible: true}
	assert.True(t, VisibleToStudent(selected, "s2", show))

	other := &TaskVisibility{TaskID: "t1", ToggledForUserID: "s2", IsVisible: true}
	assert.False(t, VisibleToStudent(selected, "s2", other), "override for another task is ignored")
	assert.False(t, VisibleToStudent(nil, "s1", nil))
}

func TestVisibleChildren(t *testing.T) {
	task := &Task{ID: "t1", AssignedTo: Assignment{Role: RoleStudent, SelectedPeopleIDs: []string{"a", "b"}}}
	overrides := []TaskVisibility{
		{TaskID: "t1", ToggledForUserID: "b", IsVisible: false},
		{TaskID: "t1", ToggledForUserID: "c", IsVisible: true},
		{TaskID: "other", ToggledForUserID: "a", IsVisible: false},
	}

	got := VisibleChildren(task, []string{"a", "b", "c", "d"}, overrides)
	assert.Equal(t, []string{"a", "c"}, got)

	assert.Empty(t, VisibleChildren(task, nil, overrides))
}
