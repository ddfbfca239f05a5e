package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/curriculum"
)

type curriculumRepository struct {
	db *trackingTable
}

var _ curriculum.Repository = (*curriculumRepository)(nil) // interface compliance check

func NewCurriculumRepository(db *DB) *curriculumRepository {
	return &curriculumRepository{db: db.tracking}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func nullEq(a, b null.String) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.String == b.String
}

func (repo *curriculumRepository) GetTrackingForInstance(ctx context.Context, sessionID, groupID null.String, date time.Time) (curriculum.Tracking, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tr := range repo.db.table {
		if nullEq(tr.SessionID, sessionID) && nullEq(tr.GroupID, groupID) && sameDay(tr.SessionDate, date) {
			return *tr, nil
		}
	}
	return curriculum.Tracking{}, curriculum.ErrNotFound
}

func (repo *curriculumRepository) FindLatestBefore(ctx context.Context, sessionID, groupID null.String, date time.Time) (curriculum.Tracking, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var latest *curriculum.Tracking
	for _, tr := range repo.db.table {
		switch {
		case sessionID.Valid && sessionID.String != "":
			if !tr.SessionID.Valid || tr.SessionID.String != sessionID.String {
				continue
			}
		case groupID.Valid && groupID.String != "":
			if !tr.GroupID.Valid || tr.GroupID.String != groupID.String {
				continue
			}
		default:
			return curriculum.Tracking{}, curriculum.ErrNoTarget
		}
		if !tr.SessionDate.Before(date) {
			continue
		}
		if latest == nil || tr.SessionDate.After(latest.SessionDate) {
			latest = tr
		}
	}
	if latest == nil {
		return curriculum.Tracking{}, curriculum.ErrNotFound
	}
	return *latest, nil
}

func (repo *curriculumRepository) CreateTracking(ctx context.Context, tr curriculum.Tracking) (curriculum.Tracking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tr.ID = uuid.New().String()
	repo.db.table[tr.ID] = &tr
	return tr, nil
}

func (repo *curriculumRepository) UpdateTracking(ctx context.Context, tr curriculum.Tracking) (curriculum.Tracking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[tr.ID]; !ok {
		return curriculum.Tracking{}, curriculum.ErrNotFound
	}
	repo.db.table[tr.ID] = &tr
	return tr, nil
}
