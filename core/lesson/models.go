package lesson

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Lesson sources
const (
	SourceAIGenerated = "ai_generated"
	SourceManual      = "manual"
)

// Content is the structured body of a lesson plan.
type Content struct {
	Objectives []string `json:"objectives"`
	Materials  []string `json:"materials"`
	Activities []string `json:"activities"`
	Assessment string   `json:"assessment"`
}

// Scope is the multi-tenant isolation triple. An invalid SchoolID must
// filter to NULL-scoped rows only; it never widens a query.
type Scope struct {
	SchoolID   null.String `json:"school_id"`
	DistrictID null.String `json:"district_id"`
	StateID    null.String `json:"state_id"`
}

// Lesson is a generated or manually authored lesson plan, keyed by
// (provider, lesson_date, time_slot) or by (group_id, lesson_date).
type Lesson struct {
	ID         string      `json:"id"`
	ProviderID string      `json:"provider_id"`
	GroupID    null.String `json:"group_id"`
	LessonDate time.Time   `json:"lesson_date"`
	TimeSlot   null.String `json:"time_slot"` // "{start}-{end}"; unset for group-keyed lessons

	Content Content     `json:"content"`
	Notes   null.String `json:"notes"`
	Source  string      `json:"lesson_source"` // ai_generated|manual

	Scope

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotKey returns the saved-lessons map key for the lesson: its time slot, or
// the group id for group-keyed lessons.
func (l Lesson) SlotKey() string {
	if l.TimeSlot.Valid {
		return l.TimeSlot.String
	}
	return l.GroupID.String
}

// SavedLessons maps a slot identity (time-slot key or group id) to the saved
// lesson for one date. State updates go through With/Without so consumers
// always observe referential replacement, never in-place mutation.
type SavedLessons map[string]Lesson

// With returns a copy of m with the lesson stored under its slot key.
func (m SavedLessons) With(l Lesson) SavedLessons {
	out := make(SavedLessons, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[l.SlotKey()] = l
	return out
}

// Without returns a copy of m with the given slot key removed.
func (m SavedLessons) Without(slotKey string) SavedLessons {
	out := make(SavedLessons, len(m))
	for k, v := range m {
		if k != slotKey {
			out[k] = v
		}
	}
	return out
}
