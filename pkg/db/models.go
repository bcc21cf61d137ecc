// pkg/db/models.go
package db

import (
	"encoding/json"
	"time"

	"github.com/smith3v/habit-reminder/pkg/recurrence"
	"gorm.io/datatypes"
)

// Tracking lifecycle states.
const (
	StateRunning  = "running"
	StatePaused   = "paused"
	StateArchived = "archived"
	StateDeleted  = "deleted"
)

// Reminder statuses and answer values. Value is set iff the status is
// answered.
const (
	StatusUpcoming = "upcoming"
	StatusPending  = "pending"
	StatusAnswered = "answered"

	ValueCompleted = "completed"
	ValueDismissed = "dismissed"
)

type Tracking struct {
	ID        uint           `gorm:"primaryKey"`
	PublicID  string         `gorm:"not null;uniqueIndex"`
	UserID    int64          `gorm:"index"` // To keep trackings separate for each user
	Question  string         `gorm:"not null"`
	Notes     string
	Icon      string
	Rule      datatypes.JSON `gorm:"not null"`
	Slots     datatypes.JSON `gorm:"not null"`
	State     string         `gorm:"not null;default:running;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reminder struct {
	ID          uint      `gorm:"primaryKey"`
	PublicID    string    `gorm:"not null;uniqueIndex"`
	TrackingID  uint      `gorm:"index;index:idx_tracking_status"`
	Tracking    Tracking  `gorm:"constraint:OnDelete:CASCADE"`
	UserID      int64     `gorm:"index"`
	ScheduledAt time.Time `gorm:"index"`
	Status      string    `gorm:"not null;index:idx_tracking_status"`
	Value       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetRule serializes the rule into the JSON column.
func (t *Tracking) SetRule(rule recurrence.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	t.Rule = datatypes.JSON(raw)
	return nil
}

// RecurrenceRule decodes the stored rule and re-validates it.
func (t *Tracking) RecurrenceRule() (recurrence.Rule, error) {
	var rule recurrence.Rule
	if err := json.Unmarshal(t.Rule, &rule); err != nil {
		return recurrence.Rule{}, err
	}
	if err := rule.Validate(); err != nil {
		return recurrence.Rule{}, err
	}
	return rule, nil
}

// SetSlots serializes the schedule slots into the JSON column.
func (t *Tracking) SetSlots(slots []recurrence.Slot) error {
	if err := recurrence.ValidateSlots(slots); err != nil {
		return err
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	t.Slots = datatypes.JSON(raw)
	return nil
}

// ScheduleSlots decodes the stored schedule slots.
func (t *Tracking) ScheduleSlots() ([]recurrence.Slot, error) {
	var slots []recurrence.Slot
	if err := json.Unmarshal(t.Slots, &slots); err != nil {
		return nil, err
	}
	if err := recurrence.ValidateSlots(slots); err != nil {
		return nil, err
	}
	return slots, nil
}
