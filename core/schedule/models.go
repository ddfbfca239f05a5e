package schedule

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
)

// TempIDPrefix marks sessions that only exist in memory and have not been
// written to the backend yet.
const TempIDPrefix = "temp-"

// Delivery roles
const (
	DeliveredByProvider   = "provider"
	DeliveredBySEA        = "sea"
	DeliveredBySpecialist = "specialist"
)

// Session is a single student/time unit of service. A session is
// "unscheduled" while its day or time window is unset; unscheduled sessions
// are excluded from calendar placement and time-slot grouping.
type Session struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`

	// delegation; the two fields are not mutually exclusive in source data
	AssignedToSpecialistID null.String `json:"assigned_to_specialist_id"`
	AssignedToSEAID        null.String `json:"assigned_to_sea_id"`

	DayOfWeek   null.Int    `json:"day_of_week"` // 1=Monday .. 5=Friday
	StartTime   null.String `json:"start_time"`  // "HH:MM[:SS]"
	EndTime     null.String `json:"end_time"`    // "HH:MM[:SS]"
	SessionDate null.Time   `json:"session_date"`

	GroupID   null.String `json:"group_id"`
	GroupName null.String `json:"group_name"`

	StudentID    string      `json:"student_id"`
	ServiceType  string      `json:"service_type"`
	DeliveredBy  string      `json:"delivered_by"` // provider|sea|specialist
	SessionNotes null.String `json:"session_notes"`
	CompletedAt  null.Time   `json:"completed_at"`
	CompletedBy  null.String `json:"completed_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTemp reports whether the session is an in-memory placeholder that has not
// been persisted yet.
func (s Session) IsTemp() bool {
	return strings.HasPrefix(s.ID, TempIDPrefix)
}

// IsScheduled reports whether the session has a day and a full time window.
func (s Session) IsScheduled() bool {
	return s.DayOfWeek.Valid && s.StartTime.Valid && s.EndTime.Valid &&
		core.NormalizeClockTime(s.StartTime.String) != "" &&
		core.NormalizeClockTime(s.EndTime.String) != ""
}

// Start returns the normalized "HH:MM" start time, or "" when unset.
func (s Session) Start() string {
	if !s.StartTime.Valid {
		return ""
	}
	return core.NormalizeClockTime(s.StartTime.String)
}

// End returns the normalized "HH:MM" end time, or "" when unset.
func (s Session) End() string {
	if !s.EndTime.Valid {
		return ""
	}
	return core.NormalizeClockTime(s.EndTime.String)
}

// Student is the lightweight projection the calendar needs.
type Student struct {
	ID         string      `json:"id"`
	Initials   string      `json:"initials"`
	GradeLevel null.String `json:"grade_level"`
}

// StudentMap indexes students by id.
type StudentMap map[string]Student

// Merge returns a new map holding all of m plus the entries of extra whose
// ids are not already present. Entries in m are never overridden; m itself is
// never mutated.
func (m StudentMap) Merge(extra StudentMap) StudentMap {
	merged := make(StudentMap, len(m)+len(extra))
	for id, st := range extra {
		merged[id] = st
	}
	for id, st := range m {
		merged[id] = st
	}
	return merged
}
