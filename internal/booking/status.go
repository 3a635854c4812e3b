package booking

// Status is the single-letter reservation status code persisted with each reservation.
type Status string

const (
	StatusPending     Status = "P"
	StatusConfirmed   Status = "C"
	StatusRejected    Status = "R"
	StatusCancelled   Status = "X"
	StatusMaintenance Status = "M"
)

var statusLabels = map[Status]string{
	StatusPending:     "Pending",
	StatusConfirmed:   "Confirmed",
	StatusRejected:    "Rejected",
	StatusCancelled:   "Cancelled",
	StatusMaintenance: "Maintenance",
}

// blockingStatuses is the one definition of which reservations occupy a resource.
var blockingStatuses = []Status{StatusConfirmed, StatusPending, StatusMaintenance}

// Label returns the human readable status name.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// Valid reports whether s is a known status code.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Blocking reports whether a reservation with this status prevents overlapping bookings.
func (s Status) Blocking() bool {
	for _, b := range blockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// BlockingStatuses returns the statuses that form the blocking set.
func BlockingStatuses() []Status {
	out := make([]Status, len(blockingStatuses))
	copy(out, blockingStatuses)
	return out
}

// BlockingStatusCodes returns the blocking set as plain strings for query arguments.
func BlockingStatusCodes() []string {
	out := make([]string, len(blockingStatuses))
	for i, s := range blockingStatuses {
		out[i] = string(s)
	}
	return out
}

// AssignStatus derives the initial status of a new reservation.
// Privileged requesters are auto-approved and may block a resource for maintenance;
// everyone else waits for manual review and the maintenance flag has no effect.
func AssignStatus(privileged, maintenance bool) Status {
	if !privileged {
		return StatusPending
	}
	if maintenance {
		return StatusMaintenance
	}
	return StatusConfirmed
}

var transitions = map[Status][]Status{
	StatusPending:     {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:   {StatusCancelled, StatusRejected},
	StatusMaintenance: {StatusCancelled},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a *TransitionError when from may not become to.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
