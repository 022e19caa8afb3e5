package domain

import "time"

// StatsGroupBy selects the dimension used by task statistics.
type StatsGroupBy string

const (
	GroupByCategory    StatsGroupBy = "category"
	GroupByStatus      StatsGroupBy = "status"
	GroupByCreatorRole StatsGroupBy = "creatorRole"
	GroupByDate        StatsGroupBy = "date"
)

// ParseGroupBy falls back to category for unknown values.
func ParseGroupBy(raw string) StatsGroupBy {
	switch g := StatsGroupBy(raw); g {
	case GroupByStatus, GroupByCreatorRole, GroupByDate:
		return g
	default:
		return GroupByCategory
	}
}

type StatsGroup struct {
	Key            string  `json:"category"`
	Count          int     `json:"count"`
	CompletedCount int     `json:"completedCount"`
	PendingCount   int     `json:"pendingCount"`
	RejectedCount  int     `json:"rejectedCount"`
	CompletionRate float64 `json:"completionRate"`
	TotalPoints    int     `json:"totalPoints"`
	AvgPointValue  float64 `json:"avgPointValue"`
}

type StatsSummary struct {
	TotalTasks        int     `json:"totalTasks"`
	CompletedTasks    int     `json:"completedTasks"`
	TotalPoints       int     `json:"totalPoints"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
}

type StatsFilter struct {
	StudentID string     `json:"studentId,omitempty"`
	SchoolID  string     `json:"schoolId,omitempty"`
	ClassID   string     `json:"classId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

type TaskStatistics struct {
	Statistics []StatsGroup `json:"statistics"`
	Summary    StatsSummary `json:"summary"`
	GroupBy    StatsGroupBy `json:"groupBy"`
	Filters    StatsFilter  `json:"filters"`
}

// StatusCounts are the per-status counters of a student's dashboard.
type StatusCounts struct {
	TotalTasks     int `json:"totalTasks"`
	PendingTasks   int `json:"pendingTasks"`
	CompletedTasks int `json:"completedTasks"`
	ApprovedTasks  int `json:"approvedTasks"`
	RejectedTasks  int `json:"rejectedTasks"`
	ExpiredTasks   int `json:"expiredTasks"`
	DueSoonTasks   int `json:"dueSoonTasks"`
	Streak         int `json:"streak"`
}

type CategorySummary struct {
	Category    string `json:"category"`
	Count       int    `json:"count"`
	Completed   int    `json:"completed"`
	TotalPoints int    `json:"totalPoints"`
}

type StudentTasksSummary struct {
	Summary                StatusCounts      `json:"summary"`
	CategorySummary        []CategorySummary `json:"categorySummary"`
	UpcomingTasks          []Task            `json:"upcomingTasks"`
	RecentlyCompletedTasks []Task            `json:"recentlyCompletedTasks"`
}

// StreakWindowDays bounds how far back a streak is counted.
const StreakWindowDays = 30

// ComputeStreak counts consecutive days with at least one approval, walking back from today.
// An empty today does not break the streak.
func ComputeStreak(approvals []time.Time, now time.Time) int {
	days := make(map[time.Time]struct{}, len(approvals))
	for _, a := range approvals {
		days[StartOfDay(a.In(now.Location()))] = struct{}{}
	}

	today := StartOfDay(now)
	streak := 0
	for i := 0; i < StreakWindowDays; i++ {
		day := today.AddDate(0, 0, -i)
		if _, ok := days[day]; ok {
			streak++
			continue
		}
		if i > 0 {
			break
		}
	}
	return streak
}
