package domain

import "time"

// TaskVisibility is a per-student override that hides or reveals a task.
type TaskVisibility struct {
	ID               string    `json:"id"`
	TaskID           string    `json:"taskId"`
	ToggledForUserID string    `json:"toggledForUserId"`
	ToggledBy        string    `json:"toggledBy"`
	ToggleByRole     Role      `json:"toggleByRole"`
	IsVisible        bool      `json:"isVisible"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// VisibleToStudent resolves whether a student sees a task, an override taking precedence
// over the task's assignment rule.
func VisibleToStudent(task *Task, studentID string, override *TaskVisibility) bool {
	if task == nil {
		return false
	}
	if override != nil && override.TaskID == task.ID && override.ToggledForUserID == studentID {
		return override.IsVisible
	}
	return task.AssignedTo.Includes(RoleStudent, studentID)
}

// VisibleChildren computes which of a parent's children currently see the task.
func VisibleChildren(task *Task, childIDs []string, overrides []TaskVisibility) []string {
	hidden := make(map[string]struct{})
	shown := make(map[string]struct{})
	for _, o := range overrides {
		if o.TaskID != task.ID {
			continue
		}
		if o.IsVisible {
			shown[o.ToggledForUserID] = struct{}{}
		} else {
			hidden[o.ToggledForUserID] = struct{}{}
		}
	}

	result := make([]string, 0, len(childIDs))
	seen := make(map[string]struct{}, len(childIDs))
	for _, child := range childIDs {
		if _, isHidden := hidden[child]; isHidden {
			continue
		}
		if task.AssignedTo.Includes(RoleStudent, child) {
			result = append(result, child)
			seen[child] = struct{}{}
		}
	}
	for _, child := range childIDs {
		if _, ok := shown[child]; !ok {
			continue
		}
		if _, dup := seen[child]; dup {
			continue
		}
		result = append(result, child)
		seen[child] = struct{}{}
	}
	return result
}
