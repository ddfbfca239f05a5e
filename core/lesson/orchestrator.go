package lesson

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/schedule"
)

// idempotency key namespace; never change it or retried requests stop
// matching their originals server-side.
var idemNamespace = uuid.MustParse("7c5c66e4-90fe-4a3b-9cf5-27b7a6e306f7")

type (
	// GenerationRequest describes one lesson to generate, for one time slot
	// or prompt.
	GenerationRequest struct {
		Students    []schedule.Student `json:"students"`
		Subject     string             `json:"subject"`
		SubjectType string             `json:"subjectType"`
		Duration    int                `json:"duration"` // minutes
		Topic       string             `json:"topic"`
		TeacherRole string             `json:"teacherRole"`
		SchoolID    null.String        `json:"schoolId"`
		LessonDate  time.Time          `json:"lessonDate"`
		TimeSlot    string             `json:"timeSlot"`
	}

	// Generated is one successful generation outcome.
	Generated struct {
		Content  Content `json:"lesson"`
		LessonID string  `json:"lessonId"`
	}

	// Generator is the external lesson-generation API. Implementations must
	// send the idempotency key with every attempt and report each attempt
	// through onAttempt (a user-visible counter).
	Generator interface {
		Generate(ctx context.Context, req GenerationRequest, idemKey string, onAttempt func(attempt int)) (Generated, error)
	}

	// Orchestrator drives generation for a day's time slots and reconciles
	// the results into saved-lesson state.
	Orchestrator struct {
		gen    Generator
		svc    *Service
		logger core.Logger
	}
)

func NewOrchestrator(gen Generator, svc *Service, logger core.Logger) *Orchestrator {
	return &Orchestrator{gen: gen, svc: svc, logger: logger}
}

// IdempotencyKey derives the stable key for one logical generation:
// deterministic over (date, time-slot-or-prompt, sorted student ids), so a
// retry after a transient failure is recognized server-side as the same
// operation.
func IdempotencyKey(date time.Time, slotOrPrompt string, studentIDs []string) string {
	ids := append([]string(nil), studentIDs...)
	sort.Strings(ids)
	payload := date.Format("2006-01-02") + "|" + slotOrPrompt + "|" + strings.Join(ids, ",")
	return uuid.NewSHA1(idemNamespace, []byte(payload)).String()
}

// SlotFailure records one failed slot in a day run.
type SlotFailure struct {
	TimeSlot string `json:"time_slot"`
	Error    string `json:"error"`
}

// DaySummary is the partial-failure report for one day's generation:
// "Generated N, M failed". Successful slots are persisted and present in
// Saved even when others failed.
type DaySummary struct {
	Generated int           `json:"generated"`
	Failed    int           `json:"failed"`
	Failures  []SlotFailure `json:"failures,omitempty"`
	Saved     SavedLessons  `json:"saved"`
}

// GenerateForDay generates one lesson per time slot, in the slots' (already
// chronological) order, persists each success, and merges results into prev
// keyed by slot identity. Completion of one slot never touches another
// slot's entry, so out-of-order completion cannot corrupt state. prev is not
// mutated.
func (o *Orchestrator) GenerateForDay(
	ctx context.Context,
	providerID string,
	date time.Time,
	slots []schedule.TimeSlot,
	buildReq func(slot schedule.TimeSlot) GenerationRequest,
	scope Scope,
	prev SavedLessons,
	onAttempt func(slotKey string, attempt int),
) (DaySummary, error) {
	summary := DaySummary{Saved: prev}

	for _, slot := range slots {
		slot := slot
		req := buildReq(slot)
		ids := make([]string, 0, len(req.Students))
		for _, st := range req.Students {
			ids = append(ids, st.ID)
		}
		key := IdempotencyKey(date, slot.Key, ids)

		gen, err := o.gen.Generate(ctx, req, key, func(attempt int) {
			if onAttempt != nil {
				onAttempt(slot.Key, attempt)
			}
		})
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, SlotFailure{TimeSlot: slot.Key, Error: err.Error()})
			o.logger.Warn("lesson: slot generation failed", map[string]interface{}{"slot": slot.Key, "error": err.Error()})
			continue
		}

		saved, err := o.svc.Save(ctx, Lesson{
			ID:         gen.LessonID,
			ProviderID: providerID,
			LessonDate: date,
			TimeSlot:   null.StringFrom(slot.Key),
			Content:    gen.Content,
			Source:     SourceAIGenerated,
			Scope:      scope,
		})
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, SlotFailure{TimeSlot: slot.Key, Error: err.Error()})
			o.logger.Error("lesson: persisting generated lesson", errors.Wrap(err, "saving lesson"))
			continue
		}

		summary.Generated++
		summary.Saved = summary.Saved.With(saved)
	}

	return summary, nil
}
