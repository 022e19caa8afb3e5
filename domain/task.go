package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending         TaskStatus = "pending"
	StatusPendingApproval TaskStatus = "pending_approval"
	StatusApproved        TaskStatus = "approved"
	StatusRejected        TaskStatus = "rejected"
)

// ParseTaskStatus validates a status filter value.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch s := TaskStatus(raw); s {
	case StatusPending, StatusPendingApproval, StatusApproved, StatusRejected:
		return s, nil
	default:
		return "", Invalid("unknown task status " + raw)
	}
}

// SystemApprover marks approvals performed automatically on completion.
const SystemApprover = "system"

// Assignment targets a role, optionally narrowed to specific profile ids.
type Assignment struct {
	Role              Role     `json:"role"`
	SelectedPeopleIDs []string `json:"selectedPeopleIds,omitempty"`
}

// Broadcast reports whether every profile of the role is targeted.
func (a Assignment) Broadcast() bool {
	return len(a.SelectedPeopleIDs) == 0
}

// Includes reports whether the given profile of the given role is targeted.
func (a Assignment) Includes(role Role, profileID string) bool {
	if a.Role != role {
		return false
	}
	if a.Broadcast() {
		return true
	}
	return containsString(a.SelectedPeopleIDs, profileID)
}

type Completion struct {
	Note        string    `json:"note"`
	Evidence    []string  `json:"evidence"`
	CompletedBy string    `json:"completedBy,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

type Approval struct {
	ApprovedBy   string    `json:"approvedBy"`
	ApproverRole string    `json:"approverRole"`
	ApprovalDate time.Time `json:"approvalDate"`
}

type Comment struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	Text        string    `json:"text"`
	CreatedBy   string    `json:"createdBy"`
	CreatorRole Role      `json:"creatorRole"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Task is an assignable unit of work that earns points once approved.
type Task struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Category           string             `json:"category"`
	SubCategory        string             `json:"subCategory,omitempty"`
	PointValue         int                `json:"pointValue"`
	CreatedBy          string             `json:"createdBy"`
	CreatorRoles       []Role             `json:"creatorRoles"`
	AssignedTo         Assignment         `json:"assignedTo"`
	Status             TaskStatus         `json:"status"`
	DueDate            *time.Time         `json:"dueDate,omitempty"`
	IsRecurring        bool               `json:"isRecurring"`
	RecurringSchedule  *RecurringSchedule `json:"recurringSchedule,omitempty"`
	RequiresApproval   bool               `json:"requiresApproval"`
	ApproverType       ApproverType       `json:"approverType"`
	SpecificApproverID string             `json:"specificApproverId,omitempty"`
	Completion         *Completion        `json:"completion,omitempty"`
	Approval           *Approval          `json:"approval,omitempty"`
	Comments           []Comment          `json:"comments,omitempty"`
	ParentTaskID       *string            `json:"parentTaskId,omitempty"`
	InstanceDate       *time.Time         `json:"instanceDate,omitempty"`
	SchoolID           string             `json:"schoolId,omitempty"`
	ClassID            string             `json:"classId,omitempty"`
	Difficulty         string             `json:"difficulty,omitempty"`
	ExternalResource   string             `json:"externalResource,omitempty"`
	Attachments        []string           `json:"attachments,omitempty"`
	Metadata           map[string]string  `json:"metadata,omitempty"`
	IsDeleted          bool               `json:"-"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	// VisibleToChildren is computed per request for parents and never stored.
	VisibleToChildren []string `json:"visibleToChildren,omitempty"`
}

// CreatedByRole reports whether the creator held the role when creating the task.
func (t *Task) CreatedByRole(role Role) bool {
	return t != nil && hasRole(t.CreatorRoles, role)
}

// IsInstance reports whether the task was generated from a recurring template.
func (t *Task) IsInstance() bool {
	return t != nil && t.ParentTaskID != nil && *t.ParentTaskID != ""
}

// NewInstance copies the template into a pending, non-recurring instance due on the given date.
func (t *Task) NewInstance(on time.Time) *Task {
	parentID := t.ID
	due := on
	instanceDate := on
	return &Task{
		Title:              t.Title,
		Description:        t.Description,
		Category:           t.Category,
		SubCategory:        t.SubCategory,
		PointValue:         t.PointValue,
		CreatedBy:          t.CreatedBy,
		CreatorRoles:       append([]Role(nil), t.CreatorRoles...),
		AssignedTo:         t.AssignedTo,
		Status:             StatusPending,
		DueDate:            &due,
		RequiresApproval:   t.RequiresApproval,
		ApproverType:       t.ApproverType,
		SpecificApproverID: t.SpecificApproverID,
		SchoolID:           t.SchoolID,
		ClassID:            t.ClassID,
		Difficulty:         t.Difficulty,
		ExternalResource:   t.ExternalResource,
		Attachments:        append([]string(nil), t.Attachments...),
		Metadata:           t.Metadata,
		ParentTaskID:       &parentID,
		InstanceDate:       &instanceDate,
		IsRecurring:        false,
	}
}

// StatusAfterCompletion is the status a completion moves the task into.
func (t *Task) StatusAfterCompletion() TaskStatus {
	if t.RequiresApproval {
		return StatusPendingApproval
	}
	return StatusApproved
}

// PointsSource classifies the award for the points ledger.
func (t *Task) PointsSource() string {
	if t.Category == "attendance" {
		return "attendance"
	}
	return "task"
}

// TaskPatch lists the mutable fields of a task. Nil fields are left untouched.
type TaskPatch struct {
	Title              *string
	Description        *string
	Category           *string
	SubCategory        *string
	PointValue         *int
	AssignedTo         *Assignment
	DueDate            *time.Time
	IsRecurring        *bool
	RecurringSchedule  *RecurringSchedule
	RequiresApproval   *bool
	ApproverType       *ApproverType
	SpecificApproverID *string
	SchoolID           *string
	ClassID            *string
	Difficulty         *string
	ExternalResource   *string
	Attachments        []string
	Metadata           map[string]string
}

// Apply copies the set fields onto the task.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.SubCategory != nil {
		t.SubCategory = *p.SubCategory
	}
	if p.PointValue != nil {
		t.PointValue = *p.PointValue
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurringSchedule != nil {
		t.RecurringSchedule = p.RecurringSchedule
	}
	if p.RequiresApproval != nil {
		t.RequiresApproval = *p.RequiresApproval
	}
	if p.ApproverType != nil {
		t.ApproverType = *p.ApproverType
	}
	if p.SpecificApproverID != nil {
		t.SpecificApproverID = *p.SpecificApproverID
	}
	if p.SchoolID != nil {
		t.SchoolID = *p.SchoolID
	}
	if p.ClassID != nil {
		t.ClassID = *p.ClassID
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.ExternalResource != nil {
		t.ExternalResource = *p.ExternalResource
	}
	if p.Attachments != nil {
		t.Attachments = p.Attachments
	}
	if p.Metadata != nil {
		t.Metadata = p.Metadata
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
