package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/curriculum"
)

type curriculumRepository struct {
	db *sqlx.DB
}

var _ curriculum.Repository = (*curriculumRepository)(nil) // interface compliance check

func NewCurriculumRepository(db *sqlx.DB) *curriculumRepository {
	return &curriculumRepository{db: db}
}

type trackingRow struct {
	ID            string      `db:"id"`
	SessionID     null.String `db:"session_id"`
	GroupID       null.String `db:"group_id"`
	Type          string      `db:"curriculum_type"`
	Level         string      `db:"curriculum_level"`
	CurrentLesson int         `db:"current_lesson"`
	SessionDate   time.Time   `db:"session_date"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (repo curriculumRepository) row(tr curriculum.Tracking) trackingRow {
	return trackingRow{
		ID:            tr.ID,
		SessionID:     tr.SessionID,
		GroupID:       tr.GroupID,
		Type:          string(tr.Type),
		Level:         tr.Level,
		CurrentLesson: tr.CurrentLesson,
		SessionDate:   tr.SessionDate.UTC(),
		CreatedAt:     tr.CreatedAt.UTC(),
		UpdatedAt:     tr.UpdatedAt.UTC(),
	}
}

func (repo curriculumRepository) unrow(r trackingRow) curriculum.Tracking {
	return curriculum.Tracking{
		ID:            r.ID,
		SessionID:     r.SessionID,
		GroupID:       r.GroupID,
		Type:          curriculum.Type(r.Type),
		Level:         r.Level,
		CurrentLesson: r.CurrentLesson,
		SessionDate:   r.SessionDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to curriculum.ErrNotFound
func (repo curriculumRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return curriculum.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo curriculumRepository) GetTrackingForInstance(ctx context.Context, sessionID, groupID null.String, date time.Time) (curriculum.Tracking, error) {
	query := `
		SELECT * FROM curriculum_tracking
		WHERE session_id IS NOT DISTINCT FROM $1
		  AND group_id IS NOT DISTINCT FROM $2
		  AND session_date = $3`
	var r trackingRow
	if err := repo.db.GetContext(ctx, &r, query, sessionID, groupID, date); err != nil {
		return curriculum.Tracking{}, repo.trapNoRowsErr(err, "getting curriculum tracking")
	}
	return repo.unrow(r), nil
}

func (repo curriculumRepository) FindLatestBefore(ctx context.Context, sessionID, groupID null.String, date time.Time) (curriculum.Tracking, error) {
	var (
		cond string
		arg  interface{}
	)
	switch {
	case sessionID.Valid && sessionID.String != "":
		cond, arg = "session_id = $1", sessionID
	case groupID.Valid && groupID.String != "":
		cond, arg = "group_id = $1", groupID
	default:
		return curriculum.Tracking{}, curriculum.ErrNoTarget
	}

	query := `
		SELECT * FROM curriculum_tracking
		WHERE ` + cond + `
		  AND session_date < $2
		ORDER BY session_date DESC
		LIMIT 1`
	var r trackingRow
	if err := repo.db.GetContext(ctx, &r, query, arg, date); err != nil {
		return curriculum.Tracking{}, repo.trapNoRowsErr(err, "finding latest curriculum tracking")
	}
	return repo.unrow(r), nil
}

func (repo curriculumRepository) CreateTracking(ctx context.Context, tr curriculum.Tracking) (curriculum.Tracking, error) {
	r := repo.row(tr)
	query := `
		INSERT INTO curriculum_tracking (
			session_id, group_id, curriculum_type, curriculum_level,
			current_lesson, session_date, created_at, updated_at
		) VALUES (
			:session_id, :group_id, :curriculum_type, :curriculum_level,
			:current_lesson, :session_date, :created_at, :updated_at
		)
		RETURNING id`
	id, err := namedQueryID(ctx, repo.db, query, r)
	if err != nil {
		return curriculum.Tracking{}, errors.Wrap(err, "inserting curriculum tracking")
	}
	r.ID = id
	return repo.unrow(r), nil
}

func (repo curriculumRepository) UpdateTracking(ctx context.Context, tr curriculum.Tracking) (curriculum.Tracking, error) {
	r := repo.row(tr)
	query := `
		UPDATE curriculum_tracking
		SET curriculum_type = :curriculum_type, curriculum_level = :curriculum_level,
		    current_lesson = :current_lesson, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return curriculum.Tracking{}, errors.Wrap(err, "updating curriculum tracking")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return curriculum.Tracking{}, curriculum.ErrNotFound
	}
	return repo.unrow(r), nil
}
