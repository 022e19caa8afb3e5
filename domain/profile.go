package domain

import "time"

// User is the base identity every role profile hangs off.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonSummary is the embedded view of a linked profile.
type PersonSummary struct {
	ProfileID string `json:"id"`
	UserID    string `json:"userId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

const TempPointsAccountPrefix = "temp_"

type Student struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Grade            int       `json:"grade,omitempty"`
	SchoolID         *string   `json:"schoolId,omitempty"`
	ParentIDs        []string  `json:"parentIds"`
	TeacherIDs       []string  `json:"teacherIds"`
	PointsAccountID  string    `json:"pointsAccountId"`
	Level            int       `json:"level"`
	Badges           []string  `json:"badges"`
	AttendanceStreak int       `json:"attendanceStreak"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasParent reports whether the parent is linked.
func (s *Student) HasParent(parentID string) bool {
	return s != nil && containsString(s.ParentIDs, parentID)
}

// StudentDetails is the student's own profile with linked people expanded.
type StudentDetails struct {
	Student
	User     *User           `json:"user,omitempty"`
	Parents  []PersonSummary `json:"parents"`
	Teachers []PersonSummary `json:"teachers"`
	School   *School         `json:"schoolDetails,omitempty"`
}

type Parent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ChildIDs  []string  `json:"childIds"`
	LinkCode  string    `json:"linkCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Teacher struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	SchoolID       string    `json:"schoolId,omitempty"`
	ClassIDs       []string  `json:"classIds"`
	SubjectsTaught []string  `json:"subjectsTaught"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	AdminIDs  []string  `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type SchoolClass struct {
	ID         string    `json:"id"`
	SchoolID   string    `json:"schoolId"`
	Name       string    `json:"name"`
	Grade      int       `json:"grade,omitempty"`
	TeacherID  string    `json:"teacherId,omitempty"`
	StudentIDs []string  `json:"studentIds"`
	JoinCode   string    `json:"joinCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// LevelProgress is the level view of a student. Points come from the points service.
type LevelProgress struct {
	Level                    int `json:"level"`
	CurrentPoints            int `json:"currentPoints"`
	PointsNeededForNextLevel int `json:"pointsNeededForNextLevel"`
	ProgressPercentage       int `json:"progressPercentage"`
}

// PointsPerLevel is the flat number of points separating two levels.
const PointsPerLevel = 100

// NewLevelProgress derives the progress view from a balance.
func NewLevelProgress(level, balance int) LevelProgress {
	if level <= 0 {
		level = 1
	}
	progress := LevelProgress{Level: level, CurrentPoints: balance, PointsNeededForNextLevel: PointsPerLevel}
	if balance > 0 {
		into := balance % PointsPerLevel
		progress.PointsNeededForNextLevel = PointsPerLevel - into
		progress.ProgressPercentage = into * 100 / PointsPerLevel
	}
	return progress
}
