package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the durable record of a settled mobile-money movement.
// Live status tracking happens in the in-memory ledger; rows land here on
// confirmed settlement or via the record endpoint.
type Transaction struct {
	gorm.Model
	UserID      uint      `gorm:"not null;index" json:"userId"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"` // deposit, withdraw
	Amount      float64   `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status      string    `gorm:"type:varchar(20);not null" json:"status"`
	ReferenceID string    `gorm:"type:varchar(100);index" json:"referenceId"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
}
