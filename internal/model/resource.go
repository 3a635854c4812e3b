package model

import "time"

// Resource is a bookable room, lab or piece of equipment.
type Resource struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"uniqueIndex;size:100;not null"`
	Capacity    int       `gorm:"not null;default:1"`
	Location    string    `gorm:"size:200"`
	Description string    `gorm:"type:text"`
	Active      bool      `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Associations
	Reservations []Reservation `gorm:"foreignKey:ResourceID"`
}
