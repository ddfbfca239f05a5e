package curriculum

import "time"

// State is the progression state of one tracking target (a session or a
// group) for one calendar instance.
type State string

const (
	// StateUninitialized: no record for this instance and no prior instance
	// to reference. The user may select curriculum/level/lesson manually.
	StateUninitialized State = "uninitialized"
	// StatePendingPrompt: no record for this instance, but a prior instance
	// has one; the user is asked whether lesson N was completed.
	StatePendingPrompt State = "pending-prompt"
	// StateTracked: this instance has its own record; direct
	// increment/decrement is available, no prompting.
	StateTracked State = "tracked"
)

// Prior is the outcome of the prior-instance lookup.
type Prior struct {
	Record *Tracking `json:"record"`
	// IsFirstInstance: no earlier-dated record exists for the target.
	IsFirstInstance bool `json:"is_first_instance"`
	// IsCurrentInstance: the current instance already has its own record.
	IsCurrentInstance bool `json:"is_current_instance"`
}

// Resolve decides the progression state of the current calendar instance.
// seeded marks targets whose curriculum was supplied by the caller (a parent
// aggregator pre-seeding the detail view); they are Tracked outright and the
// prompt machinery never runs for them.
func Resolve(current *Tracking, prior Prior, seeded bool) State {
	if seeded || current != nil || prior.IsCurrentInstance {
		return StateTracked
	}
	if prior.Record != nil {
		return StatePendingPrompt
	}
	return StateUninitialized
}

// ApplyAnswer materializes the prompt answer for the current instance. A yes
// advances the lesson counter past the prior record's lesson; a no carries it
// over unchanged. Either way the instance becomes Tracked and the prompt is
// gone for good.
func ApplyAnswer(prior Tracking, completed bool, instanceDate time.Time) Tracking {
	lesson := prior.CurrentLesson
	if completed {
		lesson++
	}
	return Tracking{
		SessionID:     prior.SessionID,
		GroupID:       prior.GroupID,
		Type:          prior.Type,
		Level:         prior.Level,
		CurrentLesson: lesson,
		SessionDate:   instanceDate,
	}
}
