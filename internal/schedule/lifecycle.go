package schedule

// Session lifecycle statuses.
const (
	StatusScheduled   = "scheduled"
	StatusConfirmed   = "confirmed"
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no_show"
	StatusRescheduled = "rescheduled"
)

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransition reports whether a session may move from one status to
// another. A rescheduled session behaves like a freshly scheduled one, so it
// may be rescheduled again.
func CanTransition(from, to string) bool {
	if Terminal(from) {
		return false
	}
	if from == to {
		return to == StatusRescheduled
	}
	switch to {
	case StatusConfirmed:
		return from == StatusScheduled || from == StatusRescheduled
	case StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	default:
		// scheduled is an initial state only
		return false
	}
}
