package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okapitech/ratiba/core/lesson"
)

type lessonRepository struct {
	db *lessonTable
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db.lesson}
}

// scopeMatch applies tenant isolation: every scope field must match exactly,
// and a NULL scope field only matches NULL-scoped rows.
func scopeMatch(l lesson.Lesson, scope lesson.Scope) bool {
	return nullEq(l.SchoolID, scope.SchoolID) &&
		nullEq(l.DistrictID, scope.DistrictID) &&
		nullEq(l.StateID, scope.StateID)
}

func (repo *lessonRepository) GetLesson(ctx context.Context, providerID string, date time.Time, timeSlot string, scope lesson.Scope) (lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, l := range repo.db.table {
		if l.GroupID.Valid {
			continue
		}
		if l.ProviderID == providerID && sameDay(l.LessonDate, date) &&
			l.TimeSlot.Valid && l.TimeSlot.String == timeSlot && scopeMatch(*l, scope) {
			return *l, nil
		}
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) GetGroupLesson(ctx context.Context, groupID string, date time.Time, scope lesson.Scope) (lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, l := range repo.db.table {
		if l.GroupID.Valid && l.GroupID.String == groupID && sameDay(l.LessonDate, date) && scopeMatch(*l, scope) {
			return *l, nil
		}
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) QueryLessonsForDate(ctx context.Context, providerID string, date time.Time, scope lesson.Scope) ([]lesson.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var lessons []lesson.Lesson
	for _, l := range repo.db.table {
		if l.ProviderID == providerID && sameDay(l.LessonDate, date) && scopeMatch(*l, scope) {
			lessons = append(lessons, *l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].SlotKey() < lessons[j].SlotKey() })
	return lessons, nil
}

func (repo *lessonRepository) UpsertLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// replace any row holding the same logical key
	for id, existing := range repo.db.table {
		if !scopeMatch(*existing, l.Scope) || !sameDay(existing.LessonDate, l.LessonDate) {
			continue
		}
		var same bool
		if l.GroupID.Valid && l.GroupID.String != "" {
			same = existing.GroupID.Valid && existing.GroupID.String == l.GroupID.String
		} else {
			same = !existing.GroupID.Valid && existing.ProviderID == l.ProviderID &&
				nullEq(existing.TimeSlot, l.TimeSlot)
		}
		if same {
			l.ID = id
			l.CreatedAt = existing.CreatedAt
			repo.db.table[id] = &l
			return l, nil
		}
	}

	l.ID = uuid.New().String()
	repo.db.table[l.ID] = &l
	return l, nil
}

func (repo *lessonRepository) DeleteLesson(ctx context.Context, id string, scope lesson.Scope) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	l, ok := repo.db.table[id]
	if !ok || !scopeMatch(*l, scope) {
		return lesson.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
