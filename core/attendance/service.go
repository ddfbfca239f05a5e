package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
)

var ErrNotFound = errors.New("attendance not found")

type (
	Repository interface {
		QueryAttendance(ctx context.Context, sessionID string, date time.Time) ([]Record, error)
		// ReplaceAttendance atomically replaces the instance's records.
		ReplaceAttendance(ctx context.Context, sessionID string, date time.Time, records []Record) ([]Record, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the records of one session instance, empty when none were
// taken yet.
func (svc *Service) Get(ctx context.Context, sessionID string, date time.Time) ([]Record, error) {
	return svc.repo.QueryAttendance(ctx, sessionID, date)
}

// Set replaces the instance's attendance with the given entries. An absence
// reason on a present student is dropped rather than stored.
func (svc *Service) Set(ctx context.Context, sessionID string, date time.Time, entries []Entry) ([]Record, error) {
	if sessionID == "" {
		return nil, core.NewValidationError(errors.New("a session id is required"))
	}

	now := time.Now().UTC()
	records := make([]Record, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.StudentID == "" {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
		}
		if _, dup := seen[e.StudentID]; dup {
			continue
		}
		seen[e.StudentID] = struct{}{}

		reason := e.AbsenceReason
		if e.Present {
			reason = null.String{}
		}
		records = append(records, Record{
			SessionID:     sessionID,
			SessionDate:   date,
			StudentID:     e.StudentID,
			Present:       e.Present,
			AbsenceReason: reason,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return svc.repo.ReplaceAttendance(ctx, sessionID, date, records)
}
