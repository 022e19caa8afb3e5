package domain

import "time"

type CategoryType string

const (
	CategoryAcademic        CategoryType = "academic"
	CategoryHome            CategoryType = "home"
	CategoryBehavior        CategoryType = "behavior"
	CategoryExtracurricular CategoryType = "extracurricular"
	CategoryAttendance      CategoryType = "attendance"
	CategorySystem          CategoryType = "system"
	CategoryCustom          CategoryType = "custom"
)

type CategoryVisibility string

const (
	VisibilityPrivate CategoryVisibility = "private"
	VisibilityFamily  CategoryVisibility = "family"
	VisibilityClass   CategoryVisibility = "class"
	VisibilitySchool  CategoryVisibility = "school"
	VisibilityPublic  CategoryVisibility = "public"
)

// TaskCategory groups tasks and carries defaults for new ones.
type TaskCategory struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	Icon              string             `json:"icon,omitempty"`
	Color             string             `json:"color,omitempty"`
	ParentCategory    string             `json:"parentCategory,omitempty"`
	CreatedBy         string             `json:"createdBy"`
	CreatorRole       string             `json:"creatorRole"`
	Type              CategoryType       `json:"type"`
	DefaultPointValue int                `json:"defaultPointValue"`
	SchoolID          string             `json:"schoolId,omitempty"`
	Subject           string             `json:"subject,omitempty"`
	GradeLevel        int                `json:"gradeLevel,omitempty"`
	IsSystem          bool               `json:"isSystem"`
	Visibility        CategoryVisibility `json:"visibility"`
	DisplayOrder      int                `json:"displayOrder"`
	IsActive          bool               `json:"isActive"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// ValidCategoryType reports membership in the closed set of types.
func ValidCategoryType(t CategoryType) bool {
	switch t {
	case CategoryAcademic, CategoryHome, CategoryBehavior, CategoryExtracurricular,
		CategoryAttendance, CategorySystem, CategoryCustom:
		return true
	}
	return false
}

// ValidCategoryVisibility reports membership in the closed set of visibilities.
func ValidCategoryVisibility(v CategoryVisibility) bool {
	switch v {
	case VisibilityPrivate, VisibilityFamily, VisibilityClass, VisibilitySchool, VisibilityPublic:
		return true
	}
	return false
}

// DefaultCategories are seeded by platform admins.
func DefaultCategories() []TaskCategory {
	return []TaskCategory{
		{Name: "Homework", Type: CategoryAcademic, Icon: "book", Color: "#4285F4", DefaultPointValue: 10, DisplayOrder: 1},
		{Name: "Reading", Type: CategoryAcademic, Icon: "book-open", Color: "#34A853", DefaultPointValue: 10, DisplayOrder: 2},
		{Name: "Chores", Type: CategoryHome, Icon: "home", Color: "#FBBC05", DefaultPointValue: 5, DisplayOrder: 3},
		{Name: "Good Behavior", Type: CategoryBehavior, Icon: "star", Color: "#EA4335", DefaultPointValue: 5, DisplayOrder: 4},
		{Name: "Sports & Clubs", Type: CategoryExtracurricular, Icon: "trophy", Color: "#9B59B6", DefaultPointValue: 15, DisplayOrder: 5},
		{Name: "Attendance", Type: CategoryAttendance, Icon: "calendar", Color: "#607D8B", DefaultPointValue: 5, DisplayOrder: 6},
	}
}
