package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/schedule"
)

type sessionRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

type sessionRow struct {
	ID                     string      `db:"id"`
	ProviderID             string      `db:"provider_id"`
	AssignedToSpecialistID null.String `db:"assigned_to_specialist_id"`
	AssignedToSEAID        null.String `db:"assigned_to_sea_id"`
	DayOfWeek              null.Int    `db:"day_of_week"`
	StartTime              null.String `db:"start_time"`
	EndTime                null.String `db:"end_time"`
	SessionDate            null.Time   `db:"session_date"`
	GroupID                null.String `db:"group_id"`
	GroupName              null.String `db:"group_name"`
	StudentID              string      `db:"student_id"`
	ServiceType            string      `db:"service_type"`
	DeliveredBy            string      `db:"delivered_by"`
	SessionNotes           null.String `db:"session_notes"`
	CompletedAt            null.Time   `db:"completed_at"`
	CompletedBy            null.String `db:"completed_by"`
	CreatedAt              time.Time   `db:"created_at"`
	UpdatedAt              time.Time   `db:"updated_at"`
}

func (repo sessionRepository) row(s schedule.Session) sessionRow {
	return sessionRow{
		ID:                     s.ID,
		ProviderID:             s.ProviderID,
		AssignedToSpecialistID: s.AssignedToSpecialistID,
		AssignedToSEAID:        s.AssignedToSEAID,
		DayOfWeek:              s.DayOfWeek,
		StartTime:              s.StartTime,
		EndTime:                s.EndTime,
		SessionDate:            s.SessionDate,
		GroupID:                s.GroupID,
		GroupName:              s.GroupName,
		StudentID:              s.StudentID,
		ServiceType:            s.ServiceType,
		DeliveredBy:            s.DeliveredBy,
		SessionNotes:           s.SessionNotes,
		CompletedAt:            s.CompletedAt,
		CompletedBy:            s.CompletedBy,
		CreatedAt:              s.CreatedAt.UTC(),
		UpdatedAt:              s.UpdatedAt.UTC(),
	}
}

func (repo sessionRepository) unrow(r sessionRow) schedule.Session {
	return schedule.Session{
		ID:                     r.ID,
		ProviderID:             r.ProviderID,
		AssignedToSpecialistID: r.AssignedToSpecialistID,
		AssignedToSEAID:        r.AssignedToSEAID,
		DayOfWeek:              r.DayOfWeek,
		StartTime:              r.StartTime,
		EndTime:                r.EndTime,
		SessionDate:            r.SessionDate,
		GroupID:                r.GroupID,
		GroupName:              r.GroupName,
		StudentID:              r.StudentID,
		ServiceType:            r.ServiceType,
		DeliveredBy:            r.DeliveredBy,
		SessionNotes:           r.SessionNotes,
		CompletedAt:            r.CompletedAt,
		CompletedBy:            r.CompletedBy,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to schedule.ErrNotFound
func (repo sessionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return schedule.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo sessionRepository) QuerySessionsRange(ctx context.Context, providerID string, start, end time.Time) ([]schedule.Session, error) {
	query := `
		SELECT * FROM session
		WHERE (provider_id = $1 OR assigned_to_specialist_id = $1 OR assigned_to_sea_id = $1)
		  AND session_date BETWEEN $2 AND $3
		ORDER BY session_date, start_time`
	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, query, providerID, start, end); err != nil {
		return nil, errors.Wrap(err, "querying sessions range")
	}
	sessions := make([]schedule.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, repo.unrow(r))
	}
	return sessions, nil
}

func (repo sessionRepository) GetSessionByID(ctx context.Context, id string) (schedule.Session, error) {
	var r sessionRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM session WHERE id = $1`, id); err != nil {
		return schedule.Session{}, repo.trapNoRowsErr(err, "getting session by id")
	}
	return repo.unrow(r), nil
}

func (repo sessionRepository) CreateSession(ctx context.Context, s schedule.Session) (schedule.Session, error) {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	r := repo.row(s)
	query := `
		INSERT INTO session (
			provider_id, assigned_to_specialist_id, assigned_to_sea_id,
			day_of_week, start_time, end_time, session_date,
			group_id, group_name, student_id, service_type, delivered_by,
			session_notes, completed_at, completed_by, created_at, updated_at
		) VALUES (
			:provider_id, :assigned_to_specialist_id, :assigned_to_sea_id,
			:day_of_week, :start_time, :end_time, :session_date,
			:group_id, :group_name, :student_id, :service_type, :delivered_by,
			:session_notes, :completed_at, :completed_by, :created_at, :updated_at
		)
		RETURNING id`
	id, err := namedQueryID(ctx, repo.db, query, r)
	if err != nil {
		return schedule.Session{}, errors.Wrap(err, "inserting session")
	}
	r.ID = id
	return repo.unrow(r), nil
}

func (repo sessionRepository) UpdateSessionAssignment(ctx context.Context, id string, specialistID, seaID null.String) (schedule.Session, error) {
	query := `
		UPDATE session
		SET assigned_to_specialist_id = $2, assigned_to_sea_id = $3, updated_at = now()
		WHERE id = $1
		RETURNING *`
	var r sessionRow
	if err := repo.db.GetContext(ctx, &r, query, id, specialistID, seaID); err != nil {
		return schedule.Session{}, repo.trapNoRowsErr(err, "updating session assignment")
	}
	return repo.unrow(r), nil
}

func (repo sessionRepository) UpdateSessionNotes(ctx context.Context, id string, notes null.String) (schedule.Session, error) {
	query := `
		UPDATE session
		SET session_notes = $2, updated_at = now()
		WHERE id = $1
		RETURNING *`
	var r sessionRow
	if err := repo.db.GetContext(ctx, &r, query, id, notes); err != nil {
		return schedule.Session{}, repo.trapNoRowsErr(err, "updating session notes")
	}
	return repo.unrow(r), nil
}

func (repo sessionRepository) QueryStudentsByID(ctx context.Context, ids []string) ([]schedule.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, initials, grade_level FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	var rows []struct {
		ID         string      `db:"id"`
		Initials   string      `db:"initials"`
		GradeLevel null.String `db:"grade_level"`
	}
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]schedule.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, schedule.Student{ID: r.ID, Initials: r.Initials, GradeLevel: r.GradeLevel})
	}
	return students, nil
}
