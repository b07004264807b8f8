package scheduling

// Status is the appointment lifecycle state. Transitions happen only through
// the Service; no other component writes it.
type Status string

const (
	StatusSubmitted   Status = "SUBMITTED"
	StatusScheduled   Status = "SCHEDULED"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCheckedIn   Status = "CHECKED_IN"
	StatusAttending   Status = "ATTENDING"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusNoShow      Status = "NO_SHOW"
	StatusRescheduled Status = "RESCHEDULED"
)

// transitions is the full edge set of the lifecycle state machine. Any pair
// not listed is rejected. Terminal states have no outgoing edges.
var transitions = map[Status]map[Status]bool{
	StatusSubmitted: {
		StatusScheduled: true,
		StatusCancelled: true,
	},
	StatusScheduled: {
		StatusConfirmed:   true,
		StatusCheckedIn:   true,
		StatusCancelled:   true,
		StatusRescheduled: true,
		StatusNoShow:      true,
	},
	StatusConfirmed: {
		StatusCheckedIn:   true,
		StatusCancelled:   true,
		StatusRescheduled: true,
		StatusNoShow:      true,
	},
	StatusCheckedIn: {
		StatusAttending: true,
		StatusCancelled: true,
	},
	StatusAttending: {
		StatusCompleted: true,
	},
	StatusRescheduled: {
		StatusScheduled: true,
	},
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusScheduled, StatusConfirmed, StatusCheckedIn,
		StatusAttending, StatusCompleted, StatusCancelled, StatusNoShow,
		StatusRescheduled:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransition reports whether the edge s -> to is in the transition table.
func (s Status) CanTransition(to Status) bool {
	return transitions[s][to]
}

// Active reports whether the appointment still occupies its slot. Cancelled
// and no-show appointments release the provider's time.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusNoShow
}
