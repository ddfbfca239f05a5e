package curriculum

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Type enumerates the supported curricula.
type Type string

const (
	TypeSPIRE      Type = "SPIRE"
	TypeRevealMath Type = "Reveal Math"
)

var (
	spireLevels  = []string{"Foundations", "1", "2", "3", "4", "5", "6", "7", "8"}
	revealLevels = []string{"K", "1", "2", "3", "4", "5"}
)

func (t Type) Valid() bool {
	return t == TypeSPIRE || t == TypeRevealMath
}

// Levels returns the valid levels for the curriculum type, in order.
func (t Type) Levels() []string {
	switch t {
	case TypeSPIRE:
		return spireLevels
	case TypeRevealMath:
		return revealLevels
	}
	return nil
}

// ValidLevel reports whether level belongs to the curriculum type.
func (t Type) ValidLevel(level string) bool {
	for _, l := range t.Levels() {
		if l == level {
			return true
		}
	}
	return false
}

// Tracking is one curriculum placement for one calendar instance of a
// session or group. Exactly one of SessionID/GroupID is meaningfully set per
// logical instance.
type Tracking struct {
	ID            string      `json:"id"`
	SessionID     null.String `json:"session_id"`
	GroupID       null.String `json:"group_id"`
	Type          Type        `json:"curriculum_type"`
	Level         string      `json:"curriculum_level"`
	CurrentLesson int         `json:"current_lesson"`
	SessionDate   time.Time   `json:"session_date"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewTracking is the payload for creating or replacing a placement.
type NewTracking struct {
	SessionID     null.String `json:"session_id"`
	GroupID       null.String `json:"group_id"`
	Type          Type        `json:"curriculum_type" validate:"required"`
	Level         string      `json:"curriculum_level" validate:"required"`
	CurrentLesson int         `json:"current_lesson" validate:"required,min=1"`
	SessionDate   time.Time   `json:"session_date" validate:"required"`
}
