package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName string `gorm:"default:''" json:"firstName"`
	LastName  string `gorm:"default:''" json:"lastName"`
	Name      string `gorm:"default:''" json:"name"` // full name kept for display
	Email     string `gorm:"unique;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Phone     string `gorm:"default:''" json:"phone"`
	AvatarURL string `gorm:"default:''" json:"avatar"`
	IsDeleted bool   `gorm:"default:false" json:"-"`
}
