package lesson_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/lesson"
	"github.com/okapitech/ratiba/core/schedule"
	"github.com/okapitech/ratiba/tests"
)

type fakeLessonRepo struct {
	rows    map[string]lesson.Lesson // id -> lesson
	pkCount int
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{rows: make(map[string]lesson.Lesson)}
}

func scopeMatch(row lesson.Lesson, scope lesson.Scope) bool {
	// no school id restricts to NULL-scoped rows only
	if !scope.SchoolID.Valid {
		return !row.SchoolID.Valid
	}
	return row.SchoolID.Valid && row.SchoolID.String == scope.SchoolID.String
}

func (r *fakeLessonRepo) GetLesson(ctx context.Context, providerID string, date time.Time, timeSlot string, scope lesson.Scope) (lesson.Lesson, error) {
	for _, row := range r.rows {
		if row.ProviderID == providerID && row.LessonDate.Equal(date) && row.TimeSlot.String == timeSlot && scopeMatch(row, scope) {
			return row, nil
		}
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (r *fakeLessonRepo) GetGroupLesson(ctx context.Context, groupID string, date time.Time, scope lesson.Scope) (lesson.Lesson, error) {
	for _, row := range r.rows {
		if row.GroupID.Valid && row.GroupID.String == groupID && row.LessonDate.Equal(date) && scopeMatch(row, scope) {
			return row, nil
		}
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (r *fakeLessonRepo) QueryLessonsForDate(ctx context.Context, providerID string, date time.Time, scope lesson.Scope) ([]lesson.Lesson, error) {
	out := make([]lesson.Lesson, 0)
	for _, row := range r.rows {
		if row.ProviderID == providerID && row.LessonDate.Equal(date) && scopeMatch(row, scope) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeLessonRepo) UpsertLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	if l.ID == "" {
		r.pkCount++
		l.ID = fmt.Sprintf("lesson-%d", r.pkCount)
	}
	r.rows[l.ID] = l
	return l, nil
}

func (r *fakeLessonRepo) DeleteLesson(ctx context.Context, id string, scope lesson.Scope) error {
	if _, ok := r.rows[id]; !ok {
		return lesson.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// flakyGenerator fails some slots and succeeds on others.
type flakyGenerator struct {
	failSlots map[string]bool
	attempts  map[string]int
	keys      map[string]string
}

func newFlakyGenerator(failSlots ...string) *flakyGenerator {
	fail := make(map[string]bool, len(failSlots))
	for _, s := range failSlots {
		fail[s] = true
	}
	return &flakyGenerator{failSlots: fail, attempts: make(map[string]int), keys: make(map[string]string)}
}

func (g *flakyGenerator) Generate(ctx context.Context, req lesson.GenerationRequest, idemKey string, onAttempt func(int)) (lesson.Generated, error) {
	g.attempts[req.TimeSlot]++
	g.keys[req.TimeSlot] = idemKey
	onAttempt(g.attempts[req.TimeSlot])
	if g.failSlots[req.TimeSlot] {
		return lesson.Generated{}, errors.New("upstream timeout")
	}
	return lesson.Generated{
		Content: lesson.Content{
			Objectives: []string{"objective for " + req.TimeSlot},
			Assessment: "observation",
		},
	}, nil
}

func slotsFixture() []schedule.TimeSlot {
	mk := func(id, start, end string) schedule.Session {
		return testutil.MakeSession(id, "prov-1", testutil.WithTimes(1, start, end))
	}
	return schedule.GroupBySlot([]schedule.Session{
		mk("A", "09:00", "09:30"),
		mk("B", "09:00", "09:30"),
		mk("C", "10:00", "10:30"),
		mk("D", "13:15", "14:00"),
	})
}

func buildReq(slot schedule.TimeSlot) lesson.GenerationRequest {
	students := make([]schedule.Student, 0, len(slot.Sessions))
	for _, s := range slot.Sessions {
		students = append(students, schedule.Student{ID: s.StudentID})
	}
	return lesson.GenerationRequest{
		Students:   students,
		Subject:    "Reading",
		Duration:   30,
		LessonDate: testutil.Date(2025, 3, 17),
		TimeSlot:   slot.Key,
	}
}

func TestOrchestrator_GenerateForDay(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := lesson.NewService(repo, testutil.NopLogger{})
	gen := newFlakyGenerator()
	orch := lesson.NewOrchestrator(gen, svc, testutil.NopLogger{})

	date := testutil.Date(2025, 3, 17)
	summary, err := orch.GenerateForDay(context.Background(), "prov-1", date, slotsFixture(), buildReq, lesson.Scope{}, nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, summary.Generated)
	assert.Zero(t, summary.Failed)
	assert.Len(t, summary.Saved, 3)
	assert.Contains(t, summary.Saved, "09:00-09:30")
	assert.Contains(t, summary.Saved, "10:00-10:30")
	assert.Contains(t, summary.Saved, "13:15-14:00")
	assert.Equal(t, lesson.SourceAIGenerated, summary.Saved["10:00-10:30"].Source)

	// everything landed in storage too
	stored, err := svc.SavedForDate(context.Background(), "prov-1", date, lesson.Scope{})
	assert.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestOrchestrator_partialFailure(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := lesson.NewService(repo, testutil.NopLogger{})
	gen := newFlakyGenerator("10:00-10:30")
	orch := lesson.NewOrchestrator(gen, svc, testutil.NopLogger{})

	prev := lesson.SavedLessons{}
	summary, err := orch.GenerateForDay(context.Background(), "prov-1", testutil.Date(2025, 3, 17), slotsFixture(), buildReq, lesson.Scope{}, prev, nil)

	assert.NoError(t, err, "partial failure is a summary, not an error")
	assert.Equal(t, 2, summary.Generated)
	assert.Equal(t, 1, summary.Failed)
	if assert.Len(t, summary.Failures, 1) {
		assert.Equal(t, "10:00-10:30", summary.Failures[0].TimeSlot)
	}
	// the failed slot has no entry; the successes are keyed by their own slots
	assert.NotContains(t, summary.Saved, "10:00-10:30")
	assert.Contains(t, summary.Saved, "09:00-09:30")
	assert.Empty(t, prev, "previous state is never mutated")
}

func TestOrchestrator_attemptCounter(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := lesson.NewService(repo, testutil.NopLogger{})
	gen := newFlakyGenerator()
	orch := lesson.NewOrchestrator(gen, svc, testutil.NopLogger{})

	var seen []string
	onAttempt := func(slotKey string, attempt int) {
		seen = append(seen, fmt.Sprintf("%s#%d", slotKey, attempt))
	}
	_, err := orch.GenerateForDay(context.Background(), "prov-1", testutil.Date(2025, 3, 17), slotsFixture(), buildReq, lesson.Scope{}, nil, onAttempt)

	assert.NoError(t, err)
	// slots run in chronological order
	assert.Equal(t, []string{"09:00-09:30#1", "10:00-10:30#1", "13:15-14:00#1"}, seen)
}

func TestIdempotencyKey(t *testing.T) {
	date := testutil.Date(2025, 3, 17)

	k1 := lesson.IdempotencyKey(date, "09:00-09:30", []string{"st-2", "st-1"})
	k2 := lesson.IdempotencyKey(date, "09:00-09:30", []string{"st-1", "st-2"})
	assert.Equal(t, k1, k2, "student order does not change the key")

	k3 := lesson.IdempotencyKey(date, "10:00-10:30", []string{"st-1", "st-2"})
	assert.NotEqual(t, k1, k3)

	k4 := lesson.IdempotencyKey(date.AddDate(0, 0, 1), "09:00-09:30", []string{"st-1", "st-2"})
	assert.NotEqual(t, k1, k4)
}

func TestSavedLessons_copyOnWrite(t *testing.T) {
	l1 := lesson.Lesson{ID: "l1", TimeSlot: null.StringFrom("09:00-09:30")}
	l2 := lesson.Lesson{ID: "l2", TimeSlot: null.StringFrom("10:00-10:30")}

	base := lesson.SavedLessons{}.With(l1)
	next := base.With(l2)

	assert.Len(t, base, 1, "With never mutates the receiver")
	assert.Len(t, next, 2)

	removed := next.Without("09:00-09:30")
	assert.Len(t, next, 2, "Without never mutates the receiver")
	assert.Len(t, removed, 1)
	assert.Contains(t, removed, "10:00-10:30")
}

func TestService_tenantScoping(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := lesson.NewService(repo, testutil.NopLogger{})
	date := testutil.Date(2025, 3, 17)

	scoped := lesson.Scope{SchoolID: null.StringFrom("school-1")}
	_, err := svc.Save(context.Background(), lesson.Lesson{
		ProviderID: "prov-1", LessonDate: date, TimeSlot: null.StringFrom("09:00-09:30"), Scope: scoped,
	})
	assert.NoError(t, err)
	_, err = svc.Save(context.Background(), lesson.Lesson{
		ProviderID: "prov-1", LessonDate: date, TimeSlot: null.StringFrom("10:00-10:30"),
	})
	assert.NoError(t, err)

	// absent school id filters to NULL-scoped rows only: no cross-tenant leak
	unscoped, err := svc.SavedForDate(context.Background(), "prov-1", date, lesson.Scope{})
	assert.NoError(t, err)
	assert.Len(t, unscoped, 1)
	assert.Contains(t, unscoped, "10:00-10:30")

	inSchool, err := svc.SavedForDate(context.Background(), "prov-1", date, scoped)
	assert.NoError(t, err)
	assert.Len(t, inSchool, 1)
	assert.Contains(t, inSchool, "09:00-09:30")
}

func TestService_Delete_missingIsNoop(t *testing.T) {
	svc := lesson.NewService(newFakeLessonRepo(), testutil.NopLogger{})
	assert.NoError(t, svc.Delete(context.Background(), "never-existed", lesson.Scope{}))
}
