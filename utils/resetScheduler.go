package utils

import (
	"codecash/database"
	"codecash/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeResetTokenScheduler starts the hourly cleanup of expired
// password reset tokens.
func InitializeResetTokenScheduler() {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		PurgeExpiredResetTokens()
	})

	c.Start()
	log.Println("[SCHEDULER] reset token cleanup started - runs hourly")
}

// PurgeExpiredResetTokens deletes reset tokens past their expiry.
func PurgeExpiredResetTokens() {
	db := database.Database.Db
	if db == nil {
		return
	}

	result := db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.PasswordReset{})
	if result.Error != nil {
		log.Printf("[SCHEDULER] failed to purge expired reset tokens: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] purged %d expired reset tokens", result.RowsAffected)
	}
}
