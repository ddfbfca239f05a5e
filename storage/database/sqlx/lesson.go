package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/lesson"
)

type lessonRepository struct {
	db *sqlx.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) *lessonRepository {
	return &lessonRepository{db: db}
}

type lessonRow struct {
	ID         string      `db:"id"`
	ProviderID string      `db:"provider_id"`
	GroupID    null.String `db:"group_id"`
	LessonDate time.Time   `db:"lesson_date"`
	TimeSlot   null.String `db:"time_slot"`
	Content    []byte      `db:"content"`
	Notes      null.String `db:"notes"`
	Source     string      `db:"source"`
	SchoolID   null.String `db:"school_id"`
	DistrictID null.String `db:"district_id"`
	StateID    null.String `db:"state_id"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func (repo lessonRepository) row(l lesson.Lesson) (lessonRow, error) {
	content, err := json.Marshal(l.Content)
	if err != nil {
		return lessonRow{}, errors.Wrap(err, "encoding lesson content")
	}
	return lessonRow{
		ID:         l.ID,
		ProviderID: l.ProviderID,
		GroupID:    l.GroupID,
		LessonDate: l.LessonDate.UTC(),
		TimeSlot:   l.TimeSlot,
		Content:    content,
		Notes:      l.Notes,
		Source:     l.Source,
		SchoolID:   l.SchoolID,
		DistrictID: l.DistrictID,
		StateID:    l.StateID,
		CreatedAt:  l.CreatedAt.UTC(),
		UpdatedAt:  l.UpdatedAt.UTC(),
	}, nil
}

func (repo lessonRepository) unrow(r lessonRow) (lesson.Lesson, error) {
	l := lesson.Lesson{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		GroupID:    r.GroupID,
		LessonDate: r.LessonDate,
		TimeSlot:   r.TimeSlot,
		Notes:      r.Notes,
		Source:     r.Source,
		Scope: lesson.Scope{
			SchoolID:   r.SchoolID,
			DistrictID: r.DistrictID,
			StateID:    r.StateID,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Content) > 0 {
		if err := json.Unmarshal(r.Content, &l.Content); err != nil {
			return lesson.Lesson{}, errors.Wrap(err, "decoding lesson content")
		}
	}
	return l, nil
}

// trapNoRowsErr maps psql "no rows" err to lesson.ErrNotFound
func (repo lessonRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return lesson.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// scopeCond filters on the tenant triple. NULL scope fields only match
// NULL-scoped rows; an unset scope never widens a query.
const scopeCond = `
	  school_id IS NOT DISTINCT FROM :school_id
	  AND district_id IS NOT DISTINCT FROM :district_id
	  AND state_id IS NOT DISTINCT FROM :state_id`

func (repo lessonRepository) getOne(ctx context.Context, query string, arg map[string]interface{}) (lesson.Lesson, error) {
	rows, err := repo.db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		return lesson.Lesson{}, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return lesson.Lesson{}, err
		}
		return lesson.Lesson{}, sql.ErrNoRows
	}
	var r lessonRow
	if err = rows.StructScan(&r); err != nil {
		return lesson.Lesson{}, err
	}
	return repo.unrow(r)
}

func scopeArgs(scope lesson.Scope) map[string]interface{} {
	return map[string]interface{}{
		"school_id":   scope.SchoolID,
		"district_id": scope.DistrictID,
		"state_id":    scope.StateID,
	}
}

func (repo lessonRepository) GetLesson(ctx context.Context, providerID string, date time.Time, timeSlot string, scope lesson.Scope) (lesson.Lesson, error) {
	query := `
		SELECT * FROM lesson
		WHERE provider_id = :provider_id
		  AND lesson_date = :lesson_date
		  AND time_slot = :time_slot
		  AND group_id IS NULL
		  AND` + scopeCond
	args := scopeArgs(scope)
	args["provider_id"] = providerID
	args["lesson_date"] = date
	args["time_slot"] = timeSlot

	l, err := repo.getOne(ctx, query, args)
	if err != nil {
		return lesson.Lesson{}, repo.trapNoRowsErr(err, "getting lesson")
	}
	return l, nil
}

func (repo lessonRepository) GetGroupLesson(ctx context.Context, groupID string, date time.Time, scope lesson.Scope) (lesson.Lesson, error) {
	query := `
		SELECT * FROM lesson
		WHERE group_id = :group_id
		  AND lesson_date = :lesson_date
		  AND` + scopeCond
	args := scopeArgs(scope)
	args["group_id"] = groupID
	args["lesson_date"] = date

	l, err := repo.getOne(ctx, query, args)
	if err != nil {
		return lesson.Lesson{}, repo.trapNoRowsErr(err, "getting group lesson")
	}
	return l, nil
}

func (repo lessonRepository) QueryLessonsForDate(ctx context.Context, providerID string, date time.Time, scope lesson.Scope) ([]lesson.Lesson, error) {
	query := `
		SELECT * FROM lesson
		WHERE provider_id = :provider_id
		  AND lesson_date = :lesson_date
		  AND` + scopeCond + `
		ORDER BY time_slot NULLS LAST, group_id`
	args := scopeArgs(scope)
	args["provider_id"] = providerID
	args["lesson_date"] = date

	rows, err := repo.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons for date")
	}
	defer func() { _ = rows.Close() }()

	var lessons []lesson.Lesson
	for rows.Next() {
		var r lessonRow
		if err = rows.StructScan(&r); err != nil {
			return nil, errors.Wrap(err, "querying lessons for date")
		}
		l, err := repo.unrow(r)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying lessons for date")
	}
	return lessons, nil
}

func (repo lessonRepository) UpsertLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	r, err := repo.row(l)
	if err != nil {
		return lesson.Lesson{}, err
	}

	// the logical key depends on how the lesson is keyed: (group, date) for
	// group lessons, (provider, date, slot) otherwise
	conflict := `(provider_id, lesson_date, time_slot) WHERE group_id IS NULL`
	if l.GroupID.Valid && l.GroupID.String != "" {
		conflict = `(group_id, lesson_date) WHERE group_id IS NOT NULL`
	}

	query := `
		INSERT INTO lesson (
			provider_id, group_id, lesson_date, time_slot, content, notes, source,
			school_id, district_id, state_id, created_at, updated_at
		) VALUES (
			:provider_id, :group_id, :lesson_date, :time_slot, :content, :notes, :source,
			:school_id, :district_id, :state_id, :created_at, :updated_at
		)
		ON CONFLICT ` + conflict + ` DO UPDATE
		SET content = EXCLUDED.content, notes = EXCLUDED.notes, source = EXCLUDED.source,
		    updated_at = EXCLUDED.updated_at
		RETURNING id`
	id, err := namedQueryID(ctx, repo.db, query, r)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "upserting lesson")
	}
	r.ID = id
	return repo.unrow(r)
}

func (repo lessonRepository) DeleteLesson(ctx context.Context, id string, scope lesson.Scope) error {
	query := `
		DELETE FROM lesson
		WHERE id = :id
		  AND` + scopeCond
	args := scopeArgs(scope)
	args["id"] = id

	res, err := repo.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lesson.ErrNotFound
	}
	return nil
}
