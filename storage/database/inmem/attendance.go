package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okapitech/ratiba/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, sessionID string, date time.Time) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.table {
		if rec.SessionID == sessionID && sameDay(rec.SessionDate, date) {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

func (repo *attendanceRepository) ReplaceAttendance(ctx context.Context, sessionID string, date time.Time, records []attendance.Record) ([]attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, rec := range repo.db.table {
		if rec.SessionID == sessionID && sameDay(rec.SessionDate, date) {
			delete(repo.db.table, id)
		}
	}

	out := make([]attendance.Record, 0, len(records))
	for i := range records {
		rec := records[i]
		rec.ID = uuid.New().String()
		repo.db.table[rec.ID] = &rec
		out = append(out, rec)
	}
	return out, nil
}
