package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type attendanceRow struct {
	ID            string      `db:"id"`
	SessionID     string      `db:"session_id"`
	SessionDate   time.Time   `db:"session_date"`
	StudentID     string      `db:"student_id"`
	Present       bool        `db:"present"`
	AbsenceReason null.String `db:"absence_reason"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (repo attendanceRepository) unrow(r attendanceRow) attendance.Record {
	return attendance.Record{
		ID:            r.ID,
		SessionID:     r.SessionID,
		SessionDate:   r.SessionDate,
		StudentID:     r.StudentID,
		Present:       r.Present,
		AbsenceReason: r.AbsenceReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (repo attendanceRepository) QueryAttendance(ctx context.Context, sessionID string, date time.Time) ([]attendance.Record, error) {
	query := `
		SELECT * FROM attendance
		WHERE session_id = $1 AND session_date = $2
		ORDER BY student_id`
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, sessionID, date); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, repo.unrow(r))
	}
	return records, nil
}

func (repo attendanceRepository) ReplaceAttendance(ctx context.Context, sessionID string, date time.Time, records []attendance.Record) ([]attendance.Record, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "replacing attendance")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance WHERE session_id = $1 AND session_date = $2`, sessionID, date); err != nil {
		return nil, errors.Wrap(err, "replacing attendance")
	}

	out := make([]attendance.Record, 0, len(records))
	insert := `
		INSERT INTO attendance (session_id, session_date, student_id, present, absence_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	for _, rec := range records {
		var id string
		err = tx.QueryRowxContext(ctx, insert,
			rec.SessionID, rec.SessionDate, rec.StudentID, rec.Present, rec.AbsenceReason,
			rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
		).Scan(&id)
		if err != nil {
			return nil, errors.Wrap(err, "replacing attendance")
		}
		rec.ID = id
		out = append(out, rec)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "replacing attendance")
	}
	return out, nil
}
