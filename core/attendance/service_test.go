package attendance_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/attendance"
	"github.com/okapitech/ratiba/tests"
)

type fakeAttendanceRepo struct {
	rows    []attendance.Record
	pkCount int
}

func (r *fakeAttendanceRepo) QueryAttendance(ctx context.Context, sessionID string, date time.Time) ([]attendance.Record, error) {
	out := make([]attendance.Record, 0)
	for _, row := range r.rows {
		if row.SessionID == sessionID && row.SessionDate.Equal(date) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ReplaceAttendance(ctx context.Context, sessionID string, date time.Time, records []attendance.Record) ([]attendance.Record, error) {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if !(row.SessionID == sessionID && row.SessionDate.Equal(date)) {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	for _, rec := range records {
		r.pkCount++
		rec.ID = fmt.Sprintf("att-%d", r.pkCount)
		r.rows = append(r.rows, rec)
	}
	return r.QueryAttendance(ctx, sessionID, date)
}

func TestService_Set(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := attendance.NewService(repo, testutil.NopLogger{})
	date := testutil.Date(2025, 3, 17)

	records, err := svc.Set(context.Background(), "sess-1", date, []attendance.Entry{
		{StudentID: "st-1", Present: true},
		{StudentID: "st-2", Present: false, AbsenceReason: null.StringFrom("sick")},
	})

	assert.NoError(t, err)
	if assert.Len(t, records, 2) {
		assert.True(t, records[0].Present)
		assert.False(t, records[0].AbsenceReason.Valid)
		assert.Equal(t, "sick", records[1].AbsenceReason.String)
	}
}

func TestService_Set_replacesInstance(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := attendance.NewService(repo, testutil.NopLogger{})
	date := testutil.Date(2025, 3, 17)
	otherDate := testutil.Date(2025, 3, 10)

	_, err := svc.Set(context.Background(), "sess-1", otherDate, []attendance.Entry{{StudentID: "st-1", Present: false}})
	assert.NoError(t, err)
	_, err = svc.Set(context.Background(), "sess-1", date, []attendance.Entry{{StudentID: "st-1", Present: false}})
	assert.NoError(t, err)

	// retaking attendance replaces only this instance
	records, err := svc.Set(context.Background(), "sess-1", date, []attendance.Entry{{StudentID: "st-1", Present: true}})
	assert.NoError(t, err)
	if assert.Len(t, records, 1) {
		assert.True(t, records[0].Present)
	}

	other, err := svc.Get(context.Background(), "sess-1", otherDate)
	assert.NoError(t, err)
	if assert.Len(t, other, 1) {
		assert.False(t, other[0].Present, "other instances untouched")
	}
}

func TestService_Set_dropsReasonWhenPresent(t *testing.T) {
	svc := attendance.NewService(&fakeAttendanceRepo{}, testutil.NopLogger{})

	records, err := svc.Set(context.Background(), "sess-1", testutil.Date(2025, 3, 17), []attendance.Entry{
		{StudentID: "st-1", Present: true, AbsenceReason: null.StringFrom("stale reason")},
	})
	assert.NoError(t, err)
	assert.False(t, records[0].AbsenceReason.Valid)
}

func TestService_Set_validation(t *testing.T) {
	svc := attendance.NewService(&fakeAttendanceRepo{}, testutil.NopLogger{})
	date := testutil.Date(2025, 3, 17)

	_, err := svc.Set(context.Background(), "", date, nil)
	assert.Error(t, err)

	_, err = svc.Set(context.Background(), "sess-1", date, []attendance.Entry{{Present: true}})
	assert.Error(t, err)
}
