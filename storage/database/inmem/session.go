package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/schedule"
)

type sessionRepository struct {
	db       *sessionTable
	students *studentTable
}

var _ schedule.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db.session, students: db.student}
}

func (repo *sessionRepository) QuerySessionsRange(ctx context.Context, providerID string, start, end time.Time) ([]schedule.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var sessions []schedule.Session
	for _, s := range repo.db.table {
		if !s.SessionDate.Valid {
			continue
		}
		owned := s.ProviderID == providerID ||
			(s.AssignedToSpecialistID.Valid && s.AssignedToSpecialistID.String == providerID) ||
			(s.AssignedToSEAID.Valid && s.AssignedToSEAID.String == providerID)
		if !owned {
			continue
		}
		date := s.SessionDate.Time
		if date.Before(start) || date.After(end) {
			continue
		}
		sessions = append(sessions, *s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].SessionDate.Time.Equal(sessions[j].SessionDate.Time) {
			return sessions[i].SessionDate.Time.Before(sessions[j].SessionDate.Time)
		}
		return sessions[i].Start() < sessions[j].Start()
	})
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (schedule.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return schedule.Session{}, schedule.ErrNotFound
}

func (repo *sessionRepository) CreateSession(ctx context.Context, s schedule.Session) (schedule.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	now := time.Now().UTC()
	s.ID = uuid.New().String()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *sessionRepository) UpdateSessionAssignment(ctx context.Context, id string, specialistID, seaID null.String) (schedule.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return schedule.Session{}, schedule.ErrNotFound
	}
	s.AssignedToSpecialistID = specialistID
	s.AssignedToSEAID = seaID
	s.UpdatedAt = time.Now().UTC()
	return *s, nil
}

func (repo *sessionRepository) UpdateSessionNotes(ctx context.Context, id string, notes null.String) (schedule.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return schedule.Session{}, schedule.ErrNotFound
	}
	s.SessionNotes = notes
	s.UpdatedAt = time.Now().UTC()
	return *s, nil
}

func (repo *sessionRepository) QueryStudentsByID(ctx context.Context, ids []string) ([]schedule.Student, error) {
	repo.students.mutex.RLock()
	defer repo.students.mutex.RUnlock()

	students := make([]schedule.Student, 0, len(ids))
	for _, id := range ids {
		if st, ok := repo.students.table[id]; ok {
			students = append(students, *st)
		}
	}
	return students, nil
}
