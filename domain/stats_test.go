package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStreak(t *testing.T) {
	now := time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
	at := func(daysAgo int) time.Time {
		return now.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour)
	}

	tests := []struct {
		name      string
		approvals []time.Time
		want      int
	}{
		{name: "no approvals", want: 0},
		{name: "today only", approvals: []time.Time{at(0)}, want: 1},
		{name: "three days running", approvals: []time.Time{at(0), at(1), at(2)}, want: 3},
		{name: "today still open", approvals: []time.Time{at(1), at(2)}, want: 2},
		{name: "gap breaks streak", approvals: []time.Time{at(0), at(2), at(3)}, want: 1},
		{name: "duplicates on one day", approvals: []time.Time{at(0), at(0), at(1)}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreak(tt.approvals, now))
		})
	}
}

func TestParseGroupBy(t *testing.T) {
	assert.Equal(t, GroupByStatus, ParseGroupBy("status"))
	assert.Equal(t, GroupByDate, ParseGroupBy("date"))
	assert.Equal(t, GroupByCategory, ParseGroupBy(""))
	assert.Equal(t, GroupByCategory, ParseGroupBy("bogus"))
}
