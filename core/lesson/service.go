package lesson

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
)

var ErrNotFound = errors.New("lesson not found")

type (
	Repository interface {
		// GetLesson fetches by the (provider, date, time slot) key within
		// the tenant scope; ErrNotFound when absent.
		GetLesson(ctx context.Context, providerID string, date time.Time, timeSlot string, scope Scope) (Lesson, error)
		// GetGroupLesson fetches by the (group, date) key.
		GetGroupLesson(ctx context.Context, groupID string, date time.Time, scope Scope) (Lesson, error)
		// QueryLessonsForDate returns every lesson of the provider for the
		// date within the tenant scope.
		QueryLessonsForDate(ctx context.Context, providerID string, date time.Time, scope Scope) ([]Lesson, error)
		// UpsertLesson writes the lesson, replacing any row with the same
		// logical key.
		UpsertLesson(ctx context.Context, l Lesson) (Lesson, error)
		// DeleteLesson removes the row; ErrNotFound when it never existed.
		DeleteLesson(ctx context.Context, id string, scope Scope) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SavedForDate loads the provider's saved lessons for a date, keyed by slot
// identity.
func (svc *Service) SavedForDate(ctx context.Context, providerID string, date time.Time, scope Scope) (SavedLessons, error) {
	lessons, err := svc.repo.QueryLessonsForDate(ctx, providerID, date, scope)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons for date")
	}
	saved := make(SavedLessons, len(lessons))
	for _, l := range lessons {
		saved[l.SlotKey()] = l
	}
	return saved, nil
}

// Save validates and upserts a manually authored or edited lesson.
func (svc *Service) Save(ctx context.Context, l Lesson) (Lesson, error) {
	if l.ProviderID == "" && !l.GroupID.Valid {
		return Lesson{}, core.NewValidationError(errors.New("a provider or group key is required"))
	}
	if !l.TimeSlot.Valid && !l.GroupID.Valid {
		return Lesson{}, core.NewValidationError(errors.New("a time slot or group key is required"))
	}
	if l.Source == "" {
		l.Source = SourceManual
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return svc.repo.UpsertLesson(ctx, l)
}

// Delete removes a lesson. A missing row is nothing to do, not a failure.
func (svc *Service) Delete(ctx context.Context, id string, scope Scope) error {
	if err := svc.repo.DeleteLesson(ctx, id, scope); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

// Get fetches one lesson by either logical key.
func (svc *Service) Get(ctx context.Context, providerID string, groupID null.String, date time.Time, timeSlot string, scope Scope) (Lesson, error) {
	if groupID.Valid && groupID.String != "" {
		return svc.repo.GetGroupLesson(ctx, groupID.String, date, scope)
	}
	return svc.repo.GetLesson(ctx, providerID, date, timeSlot, scope)
}
