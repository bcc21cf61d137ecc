package reminders

import (
	"context"
	"time"

	"github.com/smith3v/habit-reminder/pkg/db"
	"github.com/smith3v/habit-reminder/pkg/logger"
)

const ReconcileInterval = time.Minute

// ReconcileAll runs Reconcile for every user that owns a tracking. The
// service ticker uses it as the backstop behind the lazy per-read sweeps.
func ReconcileAll(now time.Time) error {
	var userIDs []int64
	if err := db.DB.Model(&db.Tracking{}).Distinct().Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := Reconcile(userID, now); err != nil {
			logger.Error("failed to reconcile reminders", "user_id", userID, "error", err)
		}
	}
	return nil
}

func StartReconcileLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = ReconcileInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := ReconcileAll(now.UTC()); err != nil {
				logger.Error("failed to reconcile reminders", "error", err)
			}
		}
	}
}
