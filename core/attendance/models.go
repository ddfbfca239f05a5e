package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Record is one student's attendance for one session instance.
type Record struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	SessionDate time.Time `json:"session_date"`
	StudentID   string `json:"student_id"`
	Present     bool   `json:"present"`
	// AbsenceReason is only meaningful when the student is absent.
	AbsenceReason null.String `json:"absence_reason"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Entry is one row of the write payload.
type Entry struct {
	StudentID     string      `json:"student_id" validate:"required"`
	Present       bool        `json:"present"`
	AbsenceReason null.String `json:"absence_reason"`
}
