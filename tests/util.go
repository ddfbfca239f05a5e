package testutil

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/schedule"
)

// NopLogger discards everything; tests that only care about return values
// use it in place of the rollbar logger.
type NopLogger struct{}

func (NopLogger) Debug(msg string, args ...interface{}) {}
func (NopLogger) Info(msg string, args ...interface{})  {}
func (NopLogger) Warn(msg string, args ...interface{})  {}
func (NopLogger) Error(msg string, args ...interface{}) {}
func (NopLogger) Fatal(msg string, args ...interface{}) {}
func (NopLogger) Enable(enabled bool)                   {}

// SessionOpt mutates a fixture session.
type SessionOpt func(*schedule.Session)

func WithTimes(day int, start, end string) SessionOpt {
	return func(s *schedule.Session) {
		s.DayOfWeek = null.IntFrom(day)
		s.StartTime = null.StringFrom(start)
		s.EndTime = null.StringFrom(end)
	}
}

func WithGroup(id, name string) SessionOpt {
	return func(s *schedule.Session) {
		s.GroupID = null.StringFrom(id)
		s.GroupName = null.StringFrom(name)
	}
}

func WithSpecialist(id string) SessionOpt {
	return func(s *schedule.Session) { s.AssignedToSpecialistID = null.StringFrom(id) }
}

func WithSEA(id string) SessionOpt {
	return func(s *schedule.Session) { s.AssignedToSEAID = null.StringFrom(id) }
}

func WithDate(date time.Time) SessionOpt {
	return func(s *schedule.Session) { s.SessionDate = null.TimeFrom(date) }
}

func WithStudent(id string) SessionOpt {
	return func(s *schedule.Session) { s.StudentID = id }
}

// MakeSession builds a scheduled session fixture owned by providerID.
func MakeSession(id, providerID string, opts ...SessionOpt) schedule.Session {
	now := time.Now().UTC()
	s := schedule.Session{
		ID:          id,
		ProviderID:  providerID,
		StudentID:   "student-" + id,
		ServiceType: "Speech",
		DeliveredBy: schedule.DeliveredByProvider,
		DayOfWeek:   null.IntFrom(1),
		StartTime:   null.StringFrom("09:00"),
		EndTime:     null.StringFrom("09:30"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Date builds a UTC date at midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
