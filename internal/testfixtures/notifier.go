package testfixtures

import (
	"sync"

	"resource-booking-backend/internal/notification"
)

// Notifier records dispatched events.
type Notifier struct {
	mu     sync.Mutex
	events []notification.Event
	// Full makes Dispatch report a full queue.
	Full bool
}

// Dispatch records e unless Full is set.
func (n *Notifier) Dispatch(e notification.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Full {
		return false
	}
	n.events = append(n.events, e)
	return true
}

// Events returns a copy of the recorded events.
func (n *Notifier) Events() []notification.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Event(nil), n.events...)
}
