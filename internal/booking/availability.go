package booking

import "time"

// BusyResources returns the ids of resources holding a blocking reservation
// that overlaps [start, end). It applies the same rule as Validate, across all
// resources at once.
func BusyResources(reservations []Slot, start, end time.Time) map[int64]struct{} {
	busy := make(map[int64]struct{})
	for _, slot := range reservations {
		window := Slot{ResourceID: slot.ResourceID, Start: start, End: end}
		if Blocks(slot, window, nil) {
			busy[slot.ResourceID] = struct{}{}
		}
	}
	return busy
}
