package schedule

import "sort"

// TimeSlot is a normalized (start,end) window and the sessions sharing it.
type TimeSlot struct {
	Key      string // "{start}-{end}", e.g. "09:00-09:30"
	Start    string // "HH:MM"
	End      string // "HH:MM"
	Sessions []Session
}

// SlotKey returns the normalized time-slot key for a session, or ok=false
// when the session is missing either time.
func SlotKey(s Session) (key string, ok bool) {
	start, end := s.Start(), s.End()
	if start == "" || end == "" {
		return "", false
	}
	return start + "-" + end, true
}

// GroupBySlot buckets one day's sessions by their exact normalized time
// window. Sessions missing either time are skipped. The result is ordered by
// ascending slot key, which for zero-padded HH:MM is chronological order;
// lesson generation, batch indexing and display all rely on that ordering.
//
// Windows sharing a start but not an end (or vice versa) are distinct slots;
// there is no overlap merging.
func GroupBySlot(sessions []Session) []TimeSlot {
	byKey := make(map[string]*TimeSlot)
	for _, s := range sessions {
		key, ok := SlotKey(s)
		if !ok {
			continue
		}
		slot, exists := byKey[key]
		if !exists {
			slot = &TimeSlot{Key: key, Start: s.Start(), End: s.End()}
			byKey[key] = slot
		}
		slot.Sessions = append(slot.Sessions, s)
	}

	slots := make([]TimeSlot, 0, len(byKey))
	for _, slot := range byKey {
		slots = append(slots, *slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Key < slots[j].Key })
	return slots
}
