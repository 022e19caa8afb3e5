package transport

import (
	"time"

	"github.com/amankumar-in/univance/domain"
)

type AssignmentRequest struct {
	Role              string   `json:"role"`
	SelectedPeopleIDs []string `json:"selectedPeopleIds"`
}

func (a *AssignmentRequest) toDomain() *domain.Assignment {
	if a == nil {
		return nil
	}
	return &domain.Assignment{Role: domain.Role(a.Role), SelectedPeopleIDs: a.SelectedPeopleIDs}
}

type ScheduleRequest struct {
	Frequency  string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	DaysOfWeek []int      `json:"daysOfWeek" validate:"dive,min=0,max=6"`
	Interval   int        `json:"interval" validate:"gte=0"`
	EndDate    *time.Time `json:"endDate"`
}

func (s *ScheduleRequest) toDomain() *domain.RecurringSchedule {
	if s == nil {
		return nil
	}
	return &domain.RecurringSchedule{
		Frequency:  domain.Frequency(s.Frequency),
		DaysOfWeek: s.DaysOfWeek,
		Interval:   s.Interval,
		EndDate:    s.EndDate,
	}
}

// TaskRequest is the body of task creation. Required fields are checked by the use case so the
// client gets a single combined message.
type TaskRequest struct {
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Category           string             `json:"category"`
	SubCategory        string             `json:"subCategory"`
	PointValue         *int               `json:"pointValue"`
	AssignedTo         *AssignmentRequest `json:"assignedTo"`
	DueDate            *time.Time         `json:"dueDate"`
	IsRecurring        bool               `json:"isRecurring"`
	RecurringSchedule  *ScheduleRequest   `json:"recurringSchedule"`
	RequiresApproval   *bool              `json:"requiresApproval"`
	ApproverType       string             `json:"approverType" validate:"omitempty,oneof=parent teacher none"`
	SpecificApproverID string             `json:"specificApproverId"`
	SchoolID           string             `json:"schoolId"`
	ClassID            string             `json:"classId"`
	Difficulty         string             `json:"difficulty"`
	ExternalResource   string             `json:"externalResource"`
	Attachments        []string           `json:"attachments"`
	Metadata           map[string]string  `json:"metadata"`
}

// Assignment exposes the parsed assignment.
func (r TaskRequest) Assignment() *domain.Assignment { return r.AssignedTo.toDomain() }

// Schedule exposes the parsed recurrence.
func (r TaskRequest) Schedule() *domain.RecurringSchedule { return r.RecurringSchedule.toDomain() }

// TaskUpdateRequest carries only the fields being changed.
type TaskUpdateRequest struct {
	Title              *string            `json:"title"`
	Description        *string            `json:"description"`
	Category           *string            `json:"category"`
	SubCategory        *string            `json:"subCategory"`
	PointValue         *int               `json:"pointValue" validate:"omitempty,gte=0"`
	AssignedTo         *AssignmentRequest `json:"assignedTo"`
	DueDate            *time.Time         `json:"dueDate"`
	IsRecurring        *bool              `json:"isRecurring"`
	RecurringSchedule  *ScheduleRequest   `json:"recurringSchedule"`
	RequiresApproval   *bool              `json:"requiresApproval"`
	ApproverType       *string            `json:"approverType" validate:"omitempty,oneof=parent teacher none"`
	SpecificApproverID *string            `json:"specificApproverId"`
	SchoolID           *string            `json:"schoolId"`
	ClassID            *string            `json:"classId"`
	Difficulty         *string            `json:"difficulty"`
	ExternalResource   *string            `json:"externalResource"`
	Attachments        []string           `json:"attachments"`
	Metadata           map[string]string  `json:"metadata"`
}

func (r TaskUpdateRequest) Patch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:              r.Title,
		Description:        r.Description,
		Category:           r.Category,
		SubCategory:        r.SubCategory,
		PointValue:         r.PointValue,
		AssignedTo:         r.AssignedTo.toDomain(),
		DueDate:            r.DueDate,
		IsRecurring:        r.IsRecurring,
		RecurringSchedule:  r.RecurringSchedule.toDomain(),
		RequiresApproval:   r.RequiresApproval,
		SpecificApproverID: r.SpecificApproverID,
		SchoolID:           r.SchoolID,
		ClassID:            r.ClassID,
		Difficulty:         r.Difficulty,
		ExternalResource:   r.ExternalResource,
		Attachments:        r.Attachments,
		Metadata:           r.Metadata,
	}
	if r.ApproverType != nil {
		at := domain.ApproverType(*r.ApproverType)
		patch.ApproverType = &at
	}
	return patch
}

type CompleteTaskRequest struct {
	Note     string   `json:"note"`
	Evidence []string `json:"evidence"`
}

type ReviewTaskRequest struct {
	Action   string `json:"action"`
	Feedback string `json:"feedback"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type VisibilityRequest struct {
	TaskID    string `json:"taskId"`
	StudentID string `json:"studentId"`
	IsVisible *bool  `json:"isVisible"`
}

type CategoryRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Icon              string `json:"icon"`
	Color             string `json:"color"`
	ParentCategory    string `json:"parentCategory"`
	Type              string `json:"type"`
	DefaultPointValue int    `json:"defaultPointValue" validate:"gte=0"`
	SchoolID          string `json:"schoolId"`
	Subject           string `json:"subject"`
	GradeLevel        int    `json:"gradeLevel" validate:"gte=0"`
	Visibility        string `json:"visibility" validate:"omitempty,oneof=private family class school public"`
	DisplayOrder      int    `json:"displayOrder"`
}

type CategoryUpdateRequest struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Icon              *string `json:"icon"`
	Color             *string `json:"color"`
	ParentCategory    *string `json:"parentCategory"`
	DefaultPointValue *int    `json:"defaultPointValue" validate:"omitempty,gte=0"`
	Subject           *string `json:"subject"`
	GradeLevel        *int    `json:"gradeLevel"`
	Visibility        *string `json:"visibility" validate:"omitempty,oneof=private family class school public"`
	DisplayOrder      *int    `json:"displayOrder"`
}

type UserRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
}

type StudentProfileRequest struct {
	Grade    int    `json:"grade" validate:"gte=0"`
	SchoolID string `json:"schoolId"`
}

type StudentUpdateRequest struct {
	Grade *int `json:"grade" validate:"omitempty,gte=0"`
	Level *int `json:"level" validate:"omitempty,gte=1"`
}

type PointsAccountRequest struct {
	PointsAccountID string `json:"pointsAccountId"`
}

type ParentLinkRequest struct {
	ParentLinkCode string `json:"parentLinkCode"`
}

type SchoolLinkRequest struct {
	SchoolCode string `json:"schoolCode"`
}

type StudentLinkRequest struct {
	StudentID string `json:"studentId"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type LinkResponseRequest struct {
	Action string `json:"action"`
}

type TeacherProfileRequest struct {
	SchoolID       string   `json:"schoolId"`
	SubjectsTaught []string `json:"subjectsTaught"`
}

type SubjectsRequest struct {
	SubjectsTaught []string `json:"subjectsTaught" validate:"required"`
}

type SchoolRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

type ClassRequest struct {
	SchoolID  string `json:"schoolId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Grade     int    `json:"grade" validate:"gte=0"`
	TeacherID string `json:"teacherId"`
}

type RewardRequest struct {
	Title                  string `json:"title" validate:"required"`
	Description            string `json:"description"`
	CategoryID             string `json:"categoryId"`
	PointsCost             int    `json:"pointsCost" validate:"required,gt=0"`
	LimitedQuantity        bool   `json:"limitedQuantity"`
	Quantity               int    `json:"quantity" validate:"gte=0"`
	SchoolID               string `json:"schoolId"`
	Image                  string `json:"image"`
	RedemptionInstructions string `json:"redemptionInstructions"`
	Restrictions           string `json:"restrictions"`
	IsVisible              *bool  `json:"isVisible"`
}

type RewardUpdateRequest struct {
	Title                  *string `json:"title"`
	Description            *string `json:"description"`
	CategoryID             *string `json:"categoryId"`
	PointsCost             *int    `json:"pointsCost" validate:"omitempty,gt=0"`
	LimitedQuantity        *bool   `json:"limitedQuantity"`
	Quantity               *int    `json:"quantity" validate:"omitempty,gte=0"`
	Image                  *string `json:"image"`
	RedemptionInstructions *string `json:"redemptionInstructions"`
	Restrictions           *string `json:"restrictions"`
}

func (r RewardUpdateRequest) Patch() domain.RewardPatch {
	return domain.RewardPatch{
		Title:                  r.Title,
		Description:            r.Description,
		CategoryID:             r.CategoryID,
		PointsCost:             r.PointsCost,
		LimitedQuantity:        r.LimitedQuantity,
		Quantity:               r.Quantity,
		Image:                  r.Image,
		RedemptionInstructions: r.RedemptionInstructions,
		Restrictions:           r.Restrictions,
	}
}

type RewardCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	Visibility   string `json:"visibility"`
	ParentID     string `json:"parentCategory"`
	DisplayOrder int    `json:"displayOrder"`
}

type RedemptionReviewRequest struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected"`
	Feedback string `json:"feedback"`
}
