package schedule

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/provider"
)

var ErrNotFound = errors.New("session not found")

type (
	Repository interface {
		// QuerySessionsRange returns every session the given provider has
		// visibility into (owned, or assigned as specialist/SEA) whose
		// session_date falls within [start, end].
		QuerySessionsRange(ctx context.Context, providerID string, start, end time.Time) ([]Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		// CreateSession persists the session and returns it with a stable,
		// non-temp id.
		CreateSession(ctx context.Context, s Session) (Session, error)
		UpdateSessionAssignment(ctx context.Context, id string, specialistID, seaID null.String) (Session, error)
		UpdateSessionNotes(ctx context.Context, id string, notes null.String) (Session, error)
		QueryStudentsByID(ctx context.Context, ids []string) ([]Student, error)
	}

	Service struct {
		repo    Repository
		provSvc provider.ServiceInterface
		mailSvc core.EmailService
		logger  core.Logger

		mu        sync.Mutex
		promoting map[string]*promotion // temp id -> in-flight/finished persistence
	}
)

// promotion is the write-once temp->persisted transition for one local id.
type promotion struct {
	done chan struct{}
	sess Session
	err  error
}

func NewService(repo Repository, provSvc provider.ServiceInterface, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		provSvc:   provSvc,
		mailSvc:   mailSvc,
		logger:    logger,
		promoting: make(map[string]*promotion),
	}
}

// WeekView is the visibility-filtered session set for one week, plus the
// students fetched to fill gaps in the caller-supplied map.
type WeekView struct {
	Mode     ViewMode   `json:"view_mode"`
	Sessions []Session  `json:"sessions"`
	Students StudentMap `json:"students"`
}

// QueryWeek loads, classifies and filters the sessions visible to usr for the
// given date range and view mode. Students referenced by the filtered
// sessions but missing from `students` are batch-fetched and merged into the
// returned map without overriding caller entries.
//
// An empty user id yields an empty view, never an error: the calendar path
// degrades to a blank week rather than failing.
func (svc *Service) QueryWeek(ctx context.Context, usr provider.Provider, start, end time.Time, requested ViewMode, students StudentMap) (WeekView, error) {
	mode := EffectiveViewMode(usr.Role, requested)
	if usr.ID == "" {
		svc.logger.Warn("schedule: week query without a resolvable user, returning empty view")
		return WeekView{Mode: mode, Sessions: []Session{}, Students: students}, nil
	}

	sessions, err := svc.repo.QuerySessionsRange(ctx, usr.ID, start, end)
	if err != nil {
		return WeekView{}, errors.Wrap(err, "querying sessions range")
	}

	visible := FilterSessions(sessions, usr.ID, mode)

	merged := students
	if missing := MissingStudentIDs(visible, students); len(missing) > 0 {
		fetched, err := svc.repo.QueryStudentsByID(ctx, missing)
		if err != nil {
			// student initials are cosmetic; log and serve the sessions anyway
			svc.logger.Error("schedule: fetching missing students", err)
		} else {
			extra := make(StudentMap, len(fetched))
			for _, st := range fetched {
				extra[st.ID] = st
			}
			merged = students.Merge(extra)
		}
	}

	return WeekView{Mode: mode, Sessions: visible, Students: merged}, nil
}

// EnsurePersisted promotes a temp session to a persisted one. The transition
// is write-once and idempotent per local id: concurrent callers all resolve
// to the same persisted session, and no temp placeholder ever produces two
// permanent rows. Non-temp sessions are returned unchanged.
func (svc *Service) EnsurePersisted(ctx context.Context, s Session) (Session, error) {
	if !s.IsTemp() {
		return s, nil
	}

	svc.mu.Lock()
	promo, inFlight := svc.promoting[s.ID]
	if !inFlight {
		promo = &promotion{done: make(chan struct{})}
		svc.promoting[s.ID] = promo
	}
	svc.mu.Unlock()

	if inFlight {
		select {
		case <-promo.done:
			return promo.sess, promo.err
		case <-ctx.Done():
			return Session{}, ctx.Err()
		}
	}

	tempID := s.ID
	s.ID = "" // storage assigns the stable id
	persisted, err := svc.repo.CreateSession(ctx, s)
	if err != nil {
		// let a later call retry the promotion
		svc.mu.Lock()
		delete(svc.promoting, tempID)
		svc.mu.Unlock()
		promo.err = errors.Wrap(err, "persisting temp session")
		close(promo.done)
		return Session{}, promo.err
	}

	promo.sess = persisted
	close(promo.done)
	return persisted, nil
}

// EnsureAllPersisted promotes every session in the slice, preserving order.
func (svc *Service) EnsureAllPersisted(ctx context.Context, sessions []Session) ([]Session, error) {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		persisted, err := svc.EnsurePersisted(ctx, s)
		if err != nil {
			return nil, err
		}
		out[i] = persisted
	}
	return out, nil
}

// SaveNotes persists session notes, promoting a temp session first: notes are
// one of the write-requiring actions that force backend persistence.
func (svc *Service) SaveNotes(ctx context.Context, s Session, notes string) (Session, error) {
	persisted, err := svc.EnsurePersisted(ctx, s)
	if err != nil {
		return Session{}, err
	}
	return svc.repo.UpdateSessionNotes(ctx, persisted.ID, null.NewString(notes, notes != ""))
}

// Assignment ops. Each clears-or-sets the delegation fields and notifies the
// new delegate by email.

func (svc *Service) AssignSpecialist(ctx context.Context, s Session, specialistID string) (Session, error) {
	return svc.assign(ctx, s, null.StringFrom(specialistID), null.String{}, specialistID)
}

func (svc *Service) AssignSEA(ctx context.Context, s Session, seaID string) (Session, error) {
	return svc.assign(ctx, s, null.String{}, null.StringFrom(seaID), seaID)
}

func (svc *Service) ClearAssignment(ctx context.Context, s Session) (Session, error) {
	return svc.assign(ctx, s, null.String{}, null.String{}, "")
}

func (svc *Service) assign(ctx context.Context, s Session, specialistID, seaID null.String, delegateID string) (Session, error) {
	persisted, err := svc.EnsurePersisted(ctx, s)
	if err != nil {
		return Session{}, err
	}
	updated, err := svc.repo.UpdateSessionAssignment(ctx, persisted.ID, specialistID, seaID)
	if err != nil {
		return Session{}, errors.Wrap(err, "updating session assignment")
	}

	if delegateID != "" {
		svc.notifyDelegate(ctx, updated, delegateID)
	}
	return updated, nil
}

func (svc *Service) notifyDelegate(ctx context.Context, s Session, delegateID string) {
	delegate, err := svc.provSvc.GetByID(ctx, delegateID)
	if err != nil {
		svc.logger.Error("schedule: looking up delegate for notification", err)
		return
	}
	window := "unscheduled"
	if s.IsScheduled() {
		window = fmt.Sprintf("%s-%s", s.Start(), s.End())
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: delegate.Name, Address: delegate.Email}},
		Subject: "A session was assigned to you",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nA %s session (%s) was assigned to you.\n\nOpen your %s calendar to review it.\n",
			delegate.Name, s.ServiceType, window, core.Conf.AppName,
		),
	})
}
