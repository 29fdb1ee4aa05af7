package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retention.
func StartCleanup(db *gorm.DB, clock clockwork.Clock, retention time.Duration, done chan struct{}) {
	go func() {
		ticker := clock.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				PurgeOlderThan(db, clock.Now().Add(-retention))
			case <-done:
				return
			}
		}
	}()
}

// PurgeOlderThan deletes system logs written before cutoff.
func PurgeOlderThan(db *gorm.DB, cutoff time.Time) int64 {
	result := db.Where("timestamp < ?", cutoff.UTC()).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "component", "logging", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "component", "logging", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
