package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core/schedule"
	"github.com/okapitech/ratiba/tests"
)

func TestGroupBySlot(t *testing.T) {
	a := testutil.MakeSession("A", me, testutil.WithTimes(1, "09:00", "09:30"))
	b := testutil.MakeSession("B", me, testutil.WithTimes(1, "09:00", "09:30"))
	c := testutil.MakeSession("C", me, testutil.WithTimes(1, "10:00", "10:30"))

	slots := schedule.GroupBySlot([]schedule.Session{c, a, b})

	if assert.Len(t, slots, 2) {
		assert.Equal(t, "09:00-09:30", slots[0].Key, "chronological slot order")
		assert.Equal(t, "10:00-10:30", slots[1].Key)
		assert.Equal(t, []string{"C"}, sessionIDs(slots[1].Sessions))
		assert.Equal(t, []string{"A", "B"}, sessionIDs(slots[0].Sessions))
	}
}

func TestGroupBySlot_normalizesSeconds(t *testing.T) {
	a := testutil.MakeSession("A", me, testutil.WithTimes(1, "09:00:00", "09:30:00"))
	b := testutil.MakeSession("B", me, testutil.WithTimes(1, "09:00", "09:30"))

	slots := schedule.GroupBySlot([]schedule.Session{a, b})

	if assert.Len(t, slots, 1) {
		assert.Equal(t, "09:00-09:30", slots[0].Key)
		assert.Len(t, slots[0].Sessions, 2)
	}
}

func TestGroupBySlot_distinctWindows(t *testing.T) {
	// same start, different end: no fuzzy merging
	a := testutil.MakeSession("A", me, testutil.WithTimes(1, "09:00", "09:30"))
	b := testutil.MakeSession("B", me, testutil.WithTimes(1, "09:00", "09:45"))

	slots := schedule.GroupBySlot([]schedule.Session{a, b})

	if assert.Len(t, slots, 2) {
		assert.Equal(t, "09:00-09:30", slots[0].Key)
		assert.Equal(t, "09:00-09:45", slots[1].Key)
	}
}

func TestGroupBySlot_skipsUnscheduled(t *testing.T) {
	a := testutil.MakeSession("A", me, testutil.WithTimes(1, "09:00", "09:30"))
	noTimes := testutil.MakeSession("B", me)
	noTimes.StartTime = null.String{}
	noTimes.EndTime = null.String{}
	noEnd := testutil.MakeSession("C", me)
	noEnd.EndTime = null.String{}

	slots := schedule.GroupBySlot([]schedule.Session{a, noTimes, noEnd})

	if assert.Len(t, slots, 1) {
		assert.Equal(t, []string{"A"}, sessionIDs(slots[0].Sessions))
	}
}

func TestGroupBySlot_idempotent(t *testing.T) {
	in := []schedule.Session{
		testutil.MakeSession("A", me, testutil.WithTimes(1, "09:00", "09:30")),
		testutil.MakeSession("B", me, testutil.WithTimes(1, "11:15", "11:45")),
		testutil.MakeSession("C", me, testutil.WithTimes(1, "09:00", "09:30")),
	}

	first := schedule.GroupBySlot(in)
	second := schedule.GroupBySlot(in)

	assert.Equal(t, first, second)
}

func sessionIDs(sessions []schedule.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
