package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordReset is a one-time numeric reset token. Multiple outstanding
// tokens per email are allowed; the most recent unexpired one wins.
type PasswordReset struct {
	gorm.Model
	Email     string    `gorm:"size:100;index;not null" json:"email"`
	Token     string    `gorm:"size:6;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
