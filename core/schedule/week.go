package schedule

import "time"

// WeekDays is the number of calendar days in a service week (Monday..Friday).
const WeekDays = 5

// WeekDates returns the Monday..Friday dates of the week `weekOffset` weeks
// away from ref. The result always starts on a Monday regardless of the
// weekday ref falls on, and holds exactly five consecutive dates.
//
// Callers pass time.Now() for the current week; the explicit reference makes
// the arithmetic testable.
func WeekDates(ref time.Time, weekOffset int) [WeekDays]time.Time {
	shifted := ref.AddDate(0, 0, weekOffset*7)

	diff := int(time.Monday - shifted.Weekday())
	if shifted.Weekday() == time.Sunday {
		diff = -6
	}
	monday := shifted.AddDate(0, 0, diff)
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())

	var dates [WeekDays]time.Time
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// DateForWeekday picks the concrete date of `dayOfWeek` (1=Monday..5=Friday)
// out of a week window. Returns the zero time for out-of-range days.
func DateForWeekday(week [WeekDays]time.Time, dayOfWeek int) time.Time {
	if dayOfWeek < 1 || dayOfWeek > WeekDays {
		return time.Time{}
	}
	return week[dayOfWeek-1]
}
