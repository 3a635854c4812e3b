package model

import (
	"time"

	"resource-booking-backend/internal/booking"
)

// Reservation is a time-bounded claim on a resource. StartAt and EndAt
// describe the half-open interval [StartAt, EndAt) and are stored in UTC.
type Reservation struct {
	ID         int64          `gorm:"primaryKey"`
	ResourceID int64          `gorm:"not null;index:idx_reservations_resource_start,priority:1"`
	UserID     int64          `gorm:"not null;index"`
	StartAt    time.Time      `gorm:"not null;index:idx_reservations_resource_start,priority:2"`
	EndAt      time.Time      `gorm:"not null"`
	Reason     string         `gorm:"size:255;not null"`
	Status     booking.Status `gorm:"size:1;not null;default:P;index"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`

	// Associations
	Resource Resource `gorm:"constraint:OnDelete:CASCADE"`
	User     User     `gorm:"constraint:OnDelete:CASCADE"`
}

// Slot returns the scheduling view of the reservation.
func (r Reservation) Slot() booking.Slot {
	return booking.Slot{
		ID:         r.ID,
		ResourceID: r.ResourceID,
		Requester:  r.User.Username,
		Start:      r.StartAt,
		End:        r.EndAt,
		Status:     r.Status,
	}
}
