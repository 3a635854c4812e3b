// Package booking holds the scheduling rules shared by every reservation write path
// and by the availability query. It has no storage dependencies.
package booking

import (
	"sort"
	"time"
)

// Slot is the scheduling view of a reservation.
type Slot struct {
	ID         int64
	ResourceID int64
	Requester  string
	Start      time.Time
	End        time.Time
	Status     Status
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Blocks reports whether existing prevents candidate from being scheduled.
// The slot named by excludingID is ignored.
func Blocks(existing, candidate Slot, excludingID *int64) bool {
	if existing.ResourceID != candidate.ResourceID {
		return false
	}
	if !existing.Status.Blocking() {
		return false
	}
	if excludingID != nil && existing.ID == *excludingID {
		return false
	}
	return Overlaps(existing.Start, existing.End, candidate.Start, candidate.End)
}

// Validate checks candidate against the stored reservations of its resource.
// excludingID is nil for creations; for edits and transitions it names the
// reservation being changed, which also exempts it from the past-start rule.
func Validate(candidate Slot, existing []Slot, excludingID *int64, now time.Time) error {
	if !candidate.Start.Before(candidate.End) {
		return &InvalidIntervalError{Start: candidate.Start, End: candidate.End}
	}
	if excludingID == nil && candidate.Start.Before(now) {
		return &PastStartError{Start: candidate.Start, Now: now}
	}

	var conflicts []Slot
	for _, slot := range existing {
		if Blocks(slot, candidate, excludingID) {
			conflicts = append(conflicts, slot)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Start.Equal(conflicts[j].Start) {
			return conflicts[i].ID < conflicts[j].ID
		}
		return conflicts[i].Start.Before(conflicts[j].Start)
	})
	return &ConflictError{Blocking: conflicts[0]}
}
