package trackings

import (
	"errors"
	"fmt"
	"time"

	"github.com/smith3v/habit-reminder/pkg/db"
	"github.com/smith3v/habit-reminder/pkg/logger"
	"github.com/smith3v/habit-reminder/pkg/reminders"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("trackings: tracking not found")
	ErrInvalidTransition = errors.New("trackings: invalid state transition")
)

// allowedTransitions is the full lifecycle table. Deleted is terminal and
// archived trackings cannot resume directly; self-transitions are absent on
// purpose.
var allowedTransitions = map[string][]string{
	db.StateRunning:  {db.StatePaused, db.StateArchived, db.StateDeleted},
	db.StatePaused:   {db.StateRunning, db.StateArchived, db.StateDeleted},
	db.StateArchived: {db.StateDeleted},
	db.StateDeleted:  {},
}

func CanTransition(from, to string) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Transition moves a tracking to a new lifecycle state and reconciles its
// reminders:
//
//   - paused drops the upcoming reminder (a promise the tracking should no
//     longer keep), pending and answered rows stay;
//   - archived drops upcoming, and pending too when the rule is recurring —
//     a one-time tracking's pending reminder is its whole point and
//     survives archival;
//   - resuming to running regenerates the upcoming reminder;
//   - deleted removes the tracking's reminders outright and marks the row.
func Transition(userID int64, trackingID uint, to string, now time.Time) (*db.Tracking, error) {
	var tracking db.Tracking
	err := db.DB.Where("id = ? AND user_id = ?", trackingID, userID).First(&tracking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !CanTransition(tracking.State, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tracking.State, to)
	}

	from := tracking.State
	switch to {
	case db.StatePaused:
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			if err := deleteByStatus(tx, tracking.ID, db.StatusUpcoming); err != nil {
				return err
			}
			return setState(tx, &tracking, to)
		})
	case db.StateArchived:
		rule, ruleErr := tracking.RecurrenceRule()
		if ruleErr != nil {
			return nil, ruleErr
		}
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			if err := deleteByStatus(tx, tracking.ID, db.StatusUpcoming); err != nil {
				return err
			}
			if rule.Recurring() {
				if err := deleteByStatus(tx, tracking.ID, db.StatusPending); err != nil {
					return err
				}
			}
			return setState(tx, &tracking, to)
		})
	case db.StateDeleted:
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("tracking_id = ?", tracking.ID).Delete(&db.Reminder{}).Error; err != nil {
				return err
			}
			return setState(tx, &tracking, to)
		})
	case db.StateRunning:
		if err = setState(db.DB, &tracking, to); err == nil {
			if _, regenErr := reminders.CreateNext(&tracking, nil, now); regenErr != nil {
				logger.Error("failed to regenerate reminder after resume",
					"tracking_id", tracking.ID, "error", regenErr)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("tracking state changed",
		"tracking_id", tracking.ID, "from", from, "to", to)
	return &tracking, nil
}

func setState(tx *gorm.DB, tracking *db.Tracking, to string) error {
	tracking.State = to
	return tx.Model(&db.Tracking{}).Where("id = ?", tracking.ID).
		Update("state", to).Error
}

func deleteByStatus(tx *gorm.DB, trackingID uint, status string) error {
	return tx.Where("tracking_id = ? AND status = ?", trackingID, status).
		Delete(&db.Reminder{}).Error
}
