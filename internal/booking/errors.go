package booking

import (
	"fmt"
	"time"
)

const clockLayout = "2006-01-02 15:04"

// InvalidIntervalError is returned when a reservation does not start before it ends.
type InvalidIntervalError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidIntervalError) Error() string {
	return "start must be before end"
}

// PastStartError is returned when a new reservation starts before the current time.
type PastStartError struct {
	Start time.Time
	Now   time.Time
}

func (e *PastStartError) Error() string {
	return "cannot create a reservation that starts in the past"
}

// ConflictError carries the blocking reservation that overlaps the candidate.
type ConflictError struct {
	Blocking Slot
}

func (e *ConflictError) Error() string {
	return e.Describe(time.UTC)
}

// Maintenance reports whether the blocking reservation is a maintenance block.
func (e *ConflictError) Maintenance() bool {
	return e.Blocking.Status == StatusMaintenance
}

// Describe renders the user-facing message with times shown in loc.
func (e *ConflictError) Describe(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start := e.Blocking.Start.In(loc).Format(clockLayout)
	end := e.Blocking.End.In(loc).Format(clockLayout)
	if e.Maintenance() {
		return fmt.Sprintf("resource is blocked for maintenance from %s to %s", start, end)
	}
	return fmt.Sprintf("resource is already reserved by %s from %s to %s", e.Blocking.Requester, start, end)
}

// TransitionError is returned when a status change is not allowed from the current status.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From.Label(), e.To.Label())
}
