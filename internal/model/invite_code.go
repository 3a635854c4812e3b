package model

import "time"

// InviteCode is a single-use token that grants staff rights at registration.
type InviteCode struct {
	ID        int64      `gorm:"primaryKey"`
	Code      string     `gorm:"uniqueIndex;size:50;not null"`
	Used      bool       `gorm:"not null;default:false"`
	UsedByID  *int64     `gorm:"index"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	UsedBy *User `gorm:"foreignKey:UsedByID;constraint:OnDelete:SET NULL"`
}
