package reminders

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smith3v/habit-reminder/pkg/db"
	"github.com/smith3v/habit-reminder/pkg/logger"
	"github.com/smith3v/habit-reminder/pkg/recurrence"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("reminders: reminder not found")
	ErrAlreadyAnswered = errors.New("reminders: reminder already answered")
	ErrInvalidValue    = errors.New("reminders: invalid answer value")
	ErrInvalidSnooze   = errors.New("reminders: snooze minutes must be positive")
)

// CreateNext computes the tracking's next occurrence and replaces its
// upcoming reminder with one at that instant. A nil reminder with nil error
// means there is nothing to schedule: the tracking is not running, or the
// calculator found no occurrence within its horizon. The delete-then-insert
// runs in one transaction so at most one upcoming reminder exists per
// tracking.
func CreateNext(tracking *db.Tracking, exclude *time.Time, now time.Time) (*db.Reminder, error) {
	if tracking.State != db.StateRunning {
		return nil, nil
	}
	rule, err := tracking.RecurrenceRule()
	if err != nil {
		return nil, err
	}
	slots, err := tracking.ScheduleSlots()
	if err != nil {
		return nil, err
	}

	next, ok := recurrence.NextOccurrence(rule, slots, now, exclude)
	if !ok {
		return nil, nil
	}

	status := db.StatusUpcoming
	if !next.After(now) {
		// Clock skew or rounding put the computed instant in the past;
		// it is immediately due.
		status = db.StatusPending
	}
	reminder := &db.Reminder{
		PublicID:    uuid.NewString(),
		TrackingID:  tracking.ID,
		UserID:      tracking.UserID,
		ScheduledAt: next,
		Status:      status,
	}
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tracking_id = ? AND status = ?", tracking.ID, db.StatusUpcoming).
			Delete(&db.Reminder{}).Error; err != nil {
			return err
		}
		return tx.Create(reminder).Error
	})
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// Answer marks a pending or upcoming reminder as answered with the given
// value, then regenerates the tracking's next reminder. The answered
// instant is excluded from the regeneration so an interval rule anchored to
// now cannot reproduce it. Regeneration failure is logged, never rolled
// back into the answer.
func Answer(userID int64, reminderID uint, value string, now time.Time) (*db.Reminder, error) {
	if value != db.ValueCompleted && value != db.ValueDismissed {
		return nil, ErrInvalidValue
	}

	reminder, err := findOwned(userID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.Status == db.StatusAnswered {
		return nil, ErrAlreadyAnswered
	}

	reminder.Status = db.StatusAnswered
	reminder.Value = &value
	if err := db.DB.Save(reminder).Error; err != nil {
		return nil, err
	}

	regenerate(reminder.TrackingID, reminder.ScheduledAt, now, "answer")
	return reminder, nil
}

// Delete removes a reminder and regenerates the tracking's next one,
// excluding the deleted instant.
func Delete(userID int64, reminderID uint, now time.Time) error {
	reminder, err := findOwned(userID, reminderID)
	if err != nil {
		return err
	}
	if err := db.DB.Delete(&db.Reminder{}, reminder.ID).Error; err != nil {
		return err
	}

	regenerate(reminder.TrackingID, reminder.ScheduledAt, now, "delete")
	return nil
}

// Snooze retargets the tracking's upcoming reminder to now + minutes. When
// no upcoming reminder exists one is created, so the uniqueness invariant
// holds either way.
func Snooze(userID int64, reminderID uint, minutes int, now time.Time) (*db.Reminder, error) {
	if minutes <= 0 {
		return nil, ErrInvalidSnooze
	}
	reminder, err := findOwned(userID, reminderID)
	if err != nil {
		return nil, err
	}

	target := now.Add(time.Duration(minutes) * time.Minute)
	var snoozed db.Reminder
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var upcoming db.Reminder
		findErr := tx.Where("tracking_id = ? AND status = ?", reminder.TrackingID, db.StatusUpcoming).
			First(&upcoming).Error
		switch {
		case findErr == nil:
			upcoming.ScheduledAt = target
			if err := tx.Save(&upcoming).Error; err != nil {
				return err
			}
			snoozed = upcoming
			return nil
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			snoozed = db.Reminder{
				PublicID:    uuid.NewString(),
				TrackingID:  reminder.TrackingID,
				UserID:      reminder.UserID,
				ScheduledAt: target,
				Status:      db.StatusUpcoming,
			}
			return tx.Create(&snoozed).Error
		default:
			return findErr
		}
	})
	if err != nil {
		return nil, err
	}
	return &snoozed, nil
}

// SweepExpired turns the user's elapsed upcoming reminders into pending
// ones and replenishes each affected tracking with a fresh future reminder.
// Invoked lazily on read paths; there is no background scheduler.
func SweepExpired(userID int64, now time.Time) (int64, error) {
	var expired []db.Reminder
	if err := db.DB.Where("user_id = ? AND status = ? AND scheduled_at <= ?",
		userID, db.StatusUpcoming, now).Find(&expired).Error; err != nil {
		return 0, err
	}

	var swept int64
	for _, reminder := range expired {
		reminder.Status = db.StatusPending
		if err := db.DB.Save(&reminder).Error; err != nil {
			return swept, err
		}
		swept++

		var tracking db.Tracking
		if err := db.DB.First(&tracking, reminder.TrackingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // orphan, pruned on the next reconcile
			}
			return swept, err
		}
		if _, err := CreateNext(&tracking, nil, now); err != nil {
			logger.Error("failed to replenish reminder after sweep",
				"tracking_id", tracking.ID, "error", err)
		}
	}
	return swept, nil
}

// PruneOrphans deletes the user's reminders whose tracking row no longer
// exists. The schema cascade is the primary mechanism; this is the backstop
// for referential drift.
func PruneOrphans(userID int64) (int64, error) {
	res := db.DB.Where("user_id = ? AND tracking_id NOT IN (?)",
		userID, db.DB.Model(&db.Tracking{}).Select("id")).
		Delete(&db.Reminder{})
	return res.RowsAffected, res.Error
}

// Reconcile prunes orphans and sweeps elapsed reminders for one user.
// Idempotent: a second call with the same now is a no-op.
func Reconcile(userID int64, now time.Time) error {
	if _, err := PruneOrphans(userID); err != nil {
		return err
	}
	_, err := SweepExpired(userID, now)
	return err
}

// ListForUser reconciles and returns the user's reminders ordered by
// scheduled time.
func ListForUser(userID int64, now time.Time) ([]db.Reminder, error) {
	if err := Reconcile(userID, now); err != nil {
		return nil, err
	}
	var reminders []db.Reminder
	if err := db.DB.Where("user_id = ?", userID).
		Order("scheduled_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// PreviewNext computes the tracking's next occurrence without persisting
// anything, for create/update flows that want to show the first reminder.
func PreviewNext(tracking *db.Tracking, now time.Time) (time.Time, bool, error) {
	rule, err := tracking.RecurrenceRule()
	if err != nil {
		return time.Time{}, false, err
	}
	slots, err := tracking.ScheduleSlots()
	if err != nil {
		return time.Time{}, false, err
	}
	next, ok := recurrence.NextOccurrence(rule, slots, now, nil)
	return next, ok, nil
}

func findOwned(userID int64, reminderID uint) (*db.Reminder, error) {
	var reminder db.Reminder
	err := db.DB.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func regenerate(trackingID uint, exclude time.Time, now time.Time, cause string) {
	var tracking db.Tracking
	if err := db.DB.First(&tracking, trackingID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to load tracking for reminder regeneration",
				"tracking_id", trackingID, "cause", cause, "error", err)
		}
		return
	}
	if _, err := CreateNext(&tracking, &exclude, now); err != nil {
		logger.Error("failed to regenerate reminder",
			"tracking_id", trackingID, "cause", cause, "error", err)
	}
}
