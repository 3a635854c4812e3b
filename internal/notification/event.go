package notification

import (
	"time"

	"resource-booking-backend/internal/booking"
	"resource-booking-backend/internal/model"
)

// Kind names the state change that produced an event.
type Kind string

const (
	KindCreated   Kind = "created"
	KindApproved  Kind = "approved"
	KindRejected  Kind = "rejected"
	KindCancelled Kind = "cancelled"
)

// Event is a committed reservation change, detached from the database rows.
type Event struct {
	Kind          Kind
	ReservationID int64
	Requester     string
	Email         string
	ResourceName  string
	Start         time.Time
	End           time.Time
	Status        booking.Status
}

// EventFor builds an event from a reservation loaded with its Resource and User.
func EventFor(kind Kind, r *model.Reservation) Event {
	return Event{
		Kind:          kind,
		ReservationID: r.ID,
		Requester:     r.User.Username,
		Email:         r.User.Email,
		ResourceName:  r.Resource.Name,
		Start:         r.StartAt,
		End:           r.EndAt,
		Status:        r.Status,
	}
}

// Policy decides which channels carry maintenance events.
type Policy struct {
	EmailMaintenance     bool
	BroadcastMaintenance bool
}

func (p Policy) allowEmail(e Event) bool {
	if e.Email == "" {
		return false
	}
	return e.Status != booking.StatusMaintenance || p.EmailMaintenance
}

func (p Policy) allowBroadcast(e Event) bool {
	return e.Status != booking.StatusMaintenance || p.BroadcastMaintenance
}
