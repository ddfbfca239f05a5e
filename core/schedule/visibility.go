package schedule

import "github.com/okapitech/ratiba/core/provider"

// DelegationCategory classifies a session's delegation state relative to the
// current user. The order of the constants is the priority ladder: the first
// matching category wins, for both view filtering and display colors.
type DelegationCategory int

const (
	// CategoryAssignedToMe: delegated to the current user by another specialist.
	CategoryAssignedToMe DelegationCategory = iota
	// CategoryAssignedToSEA: delegated to a SEA.
	CategoryAssignedToSEA
	// CategoryAssignedToSpecialist: delegated by the current user to a different specialist.
	CategoryAssignedToSpecialist
	// CategoryOwn: everything else the current user owns.
	CategoryOwn
)

// Display colors, highest delegation priority first.
const (
	ColorAssignedToMe         = "#8b5cf6" // purple
	ColorAssignedToSEA        = "#14b8a6" // teal
	ColorAssignedToSpecialist = "#f59e0b" // amber
	ColorOwn                  = "#3b82f6" // blue
)

func (c DelegationCategory) Color() string {
	switch c {
	case CategoryAssignedToMe:
		return ColorAssignedToMe
	case CategoryAssignedToSEA:
		return ColorAssignedToSEA
	case CategoryAssignedToSpecialist:
		return ColorAssignedToSpecialist
	default:
		return ColorOwn
	}
}

// Classify resolves the delegation category of a session relative to
// currentUserID. The ladder's exact precedence (SEA-assignment checked before
// specialist-assignment-by-owner) is a business rule carried over as-is.
func Classify(s Session, currentUserID string) DelegationCategory {
	switch {
	case s.AssignedToSpecialistID.Valid &&
		s.AssignedToSpecialistID.String == currentUserID &&
		s.ProviderID != currentUserID:
		return CategoryAssignedToMe
	case s.AssignedToSEAID.Valid:
		return CategoryAssignedToSEA
	case s.ProviderID == currentUserID &&
		s.AssignedToSpecialistID.Valid &&
		s.AssignedToSpecialistID.String != currentUserID:
		return CategoryAssignedToSpecialist
	default:
		return CategoryOwn
	}
}

// ViewMode selects which slice of the session set a user is looking at.
type ViewMode string

const (
	ViewMySessions   ViewMode = "my-sessions"
	ViewAllSessions  ViewMode = "all-sessions"
	ViewSpecialist   ViewMode = "specialist"
	ViewSEA          ViewMode = "sea"
	ViewAssignedToMe ViewMode = "assigned-to-me"
)

func (m ViewMode) Valid() bool {
	switch m {
	case ViewMySessions, ViewAllSessions, ViewSpecialist, ViewSEA, ViewAssignedToMe:
		return true
	}
	return false
}

// EffectiveViewMode applies the role override: SEAs always get the sea view,
// whatever was requested. Invalid or empty requests fall back to my-sessions.
func EffectiveViewMode(role string, requested ViewMode) ViewMode {
	if role == provider.RoleSEA {
		return ViewSEA
	}
	if !requested.Valid() {
		return ViewMySessions
	}
	return requested
}

// VisibleIn reports whether a session belongs to the given view for the
// given user.
func VisibleIn(s Session, currentUserID string, mode ViewMode) bool {
	assignedToMeAsSpecialist := s.AssignedToSpecialistID.Valid && s.AssignedToSpecialistID.String == currentUserID
	assignedToMeAsSEA := s.AssignedToSEAID.Valid && s.AssignedToSEAID.String == currentUserID
	owned := s.ProviderID == currentUserID

	switch mode {
	case ViewMySessions:
		// sessions the user will personally deliver
		return (owned && Classify(s, currentUserID) == CategoryOwn) ||
			assignedToMeAsSpecialist || assignedToMeAsSEA
	case ViewAllSessions:
		return owned || assignedToMeAsSpecialist || assignedToMeAsSEA
	case ViewSpecialist:
		return owned && s.AssignedToSpecialistID.Valid && s.AssignedToSpecialistID.String != currentUserID
	case ViewSEA:
		// both sides of a SEA delegation: what I delegated out, and what was
		// delegated to me as a SEA (the forced view for SEA-role users)
		return (owned && s.AssignedToSEAID.Valid) || assignedToMeAsSEA
	case ViewAssignedToMe:
		return assignedToMeAsSpecialist && !owned
	}
	return false
}

// FilterSessions returns the sessions visible under the given view mode for
// currentUserID. The input slice is never mutated.
func FilterSessions(sessions []Session, currentUserID string, mode ViewMode) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if VisibleIn(s, currentUserID, mode) {
			out = append(out, s)
		}
	}
	return out
}

// MissingStudentIDs collects the distinct student ids referenced by sessions
// but absent from the provided map, preserving first-seen order.
func MissingStudentIDs(sessions []Session, students StudentMap) []string {
	seen := make(map[string]struct{}, len(sessions))
	missing := make([]string, 0)
	for _, s := range sessions {
		if s.StudentID == "" {
			continue
		}
		if _, ok := students[s.StudentID]; ok {
			continue
		}
		if _, dup := seen[s.StudentID]; dup {
			continue
		}
		seen[s.StudentID] = struct{}{}
		missing = append(missing, s.StudentID)
	}
	return missing
}
