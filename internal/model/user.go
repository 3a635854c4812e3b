package model

import "time"

// UserEmailIndex names the unique index on LOWER(email) over non-empty emails.
const UserEmailIndex = "users_email_lower_key"

// User is an account that can request reservations. IsStaff marks privileged principals.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:150;not null"`
	Email        string    `gorm:"size:254;index"`
	PasswordHash string    `gorm:"size:128;not null"`
	IsStaff      bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
