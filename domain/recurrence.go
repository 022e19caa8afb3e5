package domain

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// RecurringSchedule describes how instances of a recurring task are spaced.
type RecurringSchedule struct {
	Frequency  Frequency  `json:"frequency"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	Interval   int        `json:"interval,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// Validate rejects schedules that could never produce a date.
func (s *RecurringSchedule) Validate() error {
	if s == nil {
		return Invalid("recurringSchedule is required for recurring tasks")
	}
	switch s.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return Invalid("recurringSchedule.frequency must be daily, weekly or monthly")
	}
	if s.Interval < 0 {
		return Invalid("recurringSchedule.interval must be positive")
	}
	for _, d := range s.DaysOfWeek {
		if d < 0 || d > 6 {
			return Invalid("recurringSchedule.daysOfWeek values must be between 0 and 6")
		}
	}
	return nil
}

func (s *RecurringSchedule) step() int {
	if s.Interval <= 0 {
		return 1
	}
	return s.Interval
}

func (s *RecurringSchedule) matchesDay(t time.Time) bool {
	for _, d := range s.DaysOfWeek {
		if int(t.Weekday()) == d {
			return true
		}
	}
	return false
}

// FirstInstanceDate picks the due date of the first instance of a new recurring task.
func (s *RecurringSchedule) FirstInstanceDate(dueDate *time.Time, now time.Time) time.Time {
	today := StartOfDay(now)
	fallback := today
	if dueDate != nil {
		fallback = *dueDate
	}

	if s.Frequency != FrequencyWeekly || len(s.DaysOfWeek) == 0 {
		return fallback
	}
	for i := 0; i < 7; i++ {
		candidate := today.AddDate(0, 0, i)
		if s.matchesDay(candidate) {
			return candidate
		}
	}
	return today
}

// NextInstanceDate computes the occurrence following current. ok is false once the end date is passed.
func (s *RecurringSchedule) NextInstanceDate(current time.Time) (next time.Time, ok bool) {
	switch s.Frequency {
	case FrequencyDaily:
		next = current.AddDate(0, 0, s.step())
	case FrequencyWeekly:
		next = current.AddDate(0, 0, 7*s.step())
		if len(s.DaysOfWeek) > 0 {
			found := false
			for i := 0; i < 7; i++ {
				candidate := next.AddDate(0, 0, i)
				if s.matchesDay(candidate) {
					next = candidate
					found = true
					break
				}
			}
			if !found {
				next = current.AddDate(0, 0, 7)
			}
		}
	case FrequencyMonthly:
		next = current.AddDate(0, s.step(), 0)
	default:
		return time.Time{}, false
	}

	if s.EndDate != nil && next.After(*s.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// StartOfDay truncates a timestamp to local midnight of its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
