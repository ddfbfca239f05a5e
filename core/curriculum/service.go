package curriculum

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
)

var (
	ErrNotFound      = errors.New("curriculum tracking not found")
	ErrNoTarget      = errors.New("a session id or group id is required")
	ErrUnknownAction = errors.New("unknown lesson action")
)

// Lesson counter actions.
const (
	ActionNext = "next"
	ActionPrev = "prev"
)

type (
	Repository interface {
		// GetTrackingForInstance fetches the record scoped to the exact
		// target and session_date, ErrNotFound when absent.
		GetTrackingForInstance(ctx context.Context, sessionID, groupID null.String, date time.Time) (Tracking, error)
		// FindLatestBefore fetches the most recent record for the target
		// strictly before date, ErrNotFound when none exists.
		FindLatestBefore(ctx context.Context, sessionID, groupID null.String, date time.Time) (Tracking, error)
		CreateTracking(ctx context.Context, tr Tracking) (Tracking, error)
		UpdateTracking(ctx context.Context, tr Tracking) (Tracking, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Status bundles everything a detail view needs when it opens.
type Status struct {
	State   State     `json:"state"`
	Current *Tracking `json:"current"`
	Prior   Prior     `json:"prior"`
}

func hasTarget(sessionID, groupID null.String) bool {
	return (sessionID.Valid && sessionID.String != "") || (groupID.Valid && groupID.String != "")
}

// Current fetches the tracking record of the current instance, nil when
// absent.
func (svc *Service) Current(ctx context.Context, sessionID, groupID null.String, date time.Time) (*Tracking, error) {
	if !hasTarget(sessionID, groupID) {
		return nil, ErrNoTarget
	}
	tr, err := svc.repo.GetTrackingForInstance(ctx, sessionID, groupID, date)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tr, nil
}

// Previous resolves the prior-instance lookup: session-level match takes
// precedence whenever a session id is available, group-level otherwise.
func (svc *Service) Previous(ctx context.Context, sessionID, groupID null.String, date time.Time) (Prior, error) {
	if !hasTarget(sessionID, groupID) {
		return Prior{}, ErrNoTarget
	}

	current, err := svc.Current(ctx, sessionID, groupID, date)
	if err != nil {
		return Prior{}, err
	}
	if current != nil {
		return Prior{Record: current, IsCurrentInstance: true}, nil
	}

	// session precedence
	if sessionID.Valid && sessionID.String != "" {
		if tr, err := svc.repo.FindLatestBefore(ctx, sessionID, null.String{}, date); err == nil {
			return Prior{Record: &tr}, nil
		} else if errors.Cause(err) != ErrNotFound {
			return Prior{}, err
		}
	}
	if groupID.Valid && groupID.String != "" {
		if tr, err := svc.repo.FindLatestBefore(ctx, null.String{}, groupID, date); err == nil {
			return Prior{Record: &tr}, nil
		} else if errors.Cause(err) != ErrNotFound {
			return Prior{}, err
		}
	}
	return Prior{IsFirstInstance: true}, nil
}

// GetStatus runs the full state resolution for a detail view opening.
func (svc *Service) GetStatus(ctx context.Context, sessionID, groupID null.String, date time.Time, seeded bool) (Status, error) {
	if seeded {
		// caller already holds the record; skip the lookups entirely
		return Status{State: StateTracked}, nil
	}
	current, err := svc.Current(ctx, sessionID, groupID, date)
	if err != nil {
		return Status{}, err
	}
	var prior Prior
	if current == nil {
		prior, err = svc.Previous(ctx, sessionID, groupID, date)
		if err != nil {
			return Status{}, err
		}
	}
	return Status{State: Resolve(current, prior, false), Current: current, Prior: prior}, nil
}

// Save creates or updates the placement for the instance. Saving with empty
// curriculum fields never deletes an existing record: the save is skipped and
// the existing record returned.
func (svc *Service) Save(ctx context.Context, nt NewTracking) (Tracking, error) {
	if !hasTarget(nt.SessionID, nt.GroupID) {
		return Tracking{}, ErrNoTarget
	}

	existing, err := svc.Current(ctx, nt.SessionID, nt.GroupID, nt.SessionDate)
	if err != nil {
		return Tracking{}, err
	}

	if nt.Type == "" && nt.Level == "" {
		if existing != nil {
			return *existing, nil
		}
		return Tracking{}, core.NewValidationError(errors.New("curriculum fields are empty"))
	}
	if err := svc.validate(nt.Type, nt.Level, nt.CurrentLesson); err != nil {
		return Tracking{}, err
	}

	now := time.Now().UTC()
	if existing != nil {
		existing.Type = nt.Type
		existing.Level = nt.Level
		existing.CurrentLesson = nt.CurrentLesson
		existing.UpdatedAt = now
		return svc.repo.UpdateTracking(ctx, *existing)
	}

	return svc.repo.CreateTracking(ctx, Tracking{
		SessionID:     nt.SessionID,
		GroupID:       nt.GroupID,
		Type:          nt.Type,
		Level:         nt.Level,
		CurrentLesson: nt.CurrentLesson,
		SessionDate:   nt.SessionDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Advance moves the lesson counter of a Tracked instance. The counter never
// drops below 1.
func (svc *Service) Advance(ctx context.Context, sessionID, groupID null.String, date time.Time, action string) (Tracking, error) {
	current, err := svc.Current(ctx, sessionID, groupID, date)
	if err != nil {
		return Tracking{}, err
	}
	if current == nil {
		return Tracking{}, ErrNotFound
	}

	switch action {
	case ActionNext:
		current.CurrentLesson++
	case ActionPrev:
		if current.CurrentLesson > 1 {
			current.CurrentLesson--
		}
	default:
		return Tracking{}, core.NewValidationError(ErrUnknownAction, core.FieldError{Field: "action", Error: ErrUnknownAction.Error()})
	}
	current.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTracking(ctx, *current)
}

// AnswerPrompt materializes a yes/no answer to the "did the student complete
// lesson N?" prompt. The transition is one-way: once the instance has a
// record the answer is a no-op returning the existing record, so a
// double-submit or a re-opened view can never re-prompt.
func (svc *Service) AnswerPrompt(ctx context.Context, sessionID, groupID null.String, date time.Time, completed bool) (Tracking, error) {
	existing, err := svc.Current(ctx, sessionID, groupID, date)
	if err != nil {
		return Tracking{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	prior, err := svc.Previous(ctx, sessionID, groupID, date)
	if err != nil {
		return Tracking{}, err
	}
	if prior.Record == nil {
		return Tracking{}, ErrNotFound
	}

	tr := ApplyAnswer(*prior.Record, completed, date)
	// scope the new record to the requested target, not the prior's (the
	// prior may have matched at group level while this view is session-level)
	tr.SessionID, tr.GroupID = sessionID, groupID
	now := time.Now().UTC()
	tr.CreatedAt, tr.UpdatedAt = now, now
	return svc.repo.CreateTracking(ctx, tr)
}

func (svc *Service) validate(t Type, level string, lesson int) error {
	var flds []core.FieldError
	if !t.Valid() {
		flds = append(flds, core.FieldError{Field: "curriculum_type", Error: "unknown curriculum type"})
	} else if !t.ValidLevel(level) {
		flds = append(flds, core.FieldError{Field: "curriculum_level", Error: "invalid level for " + string(t)})
	}
	if lesson < 1 {
		flds = append(flds, core.FieldError{Field: "current_lesson", Error: "must be a positive lesson number"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid curriculum placement"), flds...)
	}
	return nil
}
