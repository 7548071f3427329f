package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"gorm.io/gorm"
)

// SessionPurger deletes sessions that expired before now.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartCleanup runs an hourly goroutine that deletes system_logs older than
// retention and purges expired sessions. Session expiry is enforced at
// resolution time regardless; this only reclaims rows.
func StartCleanup(db *gorm.DB, sessions SessionPurger, retention time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep(db, sessions, retention, time.Now().UTC())
			case <-done:
				return
			}
		}
	}()
}

func sweep(db *gorm.DB, sessions SessionPurger, retention time.Duration, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result := db.WithContext(ctx).Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}

	purged, err := sessions.PurgeExpired(ctx, now)
	if err != nil {
		slog.Error("session purge failed", "error", err)
	} else if purged > 0 {
		slog.Info("expired sessions purged", "deleted", purged)
	}
}
