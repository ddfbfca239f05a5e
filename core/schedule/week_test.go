package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/okapitech/ratiba/core/schedule"
)

func TestWeekDates(t *testing.T) {
	tests := []struct {
		name       string
		ref        time.Time
		offset     int
		wantMonday time.Time
	}{
		{
			name:       "reference on a Wednesday",
			ref:        time.Date(2025, 3, 12, 15, 4, 5, 0, time.UTC), // Wed
			offset:     0,
			wantMonday: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "reference on a Monday",
			ref:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			offset:     0,
			wantMonday: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "reference on a Sunday belongs to the ending week",
			ref:        time.Date(2025, 3, 16, 8, 0, 0, 0, time.UTC), // Sun
			offset:     0,
			wantMonday: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "reference on a Saturday",
			ref:        time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC), // Sat
			offset:     0,
			wantMonday: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "next week",
			ref:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
			offset:     1,
			wantMonday: time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "previous week",
			ref:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
			offset:     -1,
			wantMonday: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "offset across a month boundary",
			ref:        time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), // Thu
			offset:     1,
			wantMonday: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := schedule.WeekDates(tt.ref, tt.offset)

			assert.Len(t, dates, schedule.WeekDays)
			assert.Equal(t, tt.wantMonday, dates[0])
			assert.Equal(t, time.Monday, dates[0].Weekday())
			for i := 1; i < len(dates); i++ {
				assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i], "dates must be consecutive")
			}
		})
	}
}

func TestWeekDates_consecutiveOffsets(t *testing.T) {
	ref := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	w0 := schedule.WeekDates(ref, 0)
	w1 := schedule.WeekDates(ref, 1)
	assert.Equal(t, w0[0].AddDate(0, 0, 7), w1[0], "next window's Monday is exactly 7 days later")
}

func TestDateForWeekday(t *testing.T) {
	week := schedule.WeekDates(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 0)

	assert.Equal(t, week[0], schedule.DateForWeekday(week, 1))
	assert.Equal(t, week[4], schedule.DateForWeekday(week, 5))
	assert.True(t, schedule.DateForWeekday(week, 0).IsZero())
	assert.True(t, schedule.DateForWeekday(week, 6).IsZero())
}
