package recurrence

import (
	"errors"
	"fmt"
)

var ErrInvalidSlots = errors.New("recurrence: invalid schedule slots")

const MaxSlots = 5

// Slot is one time-of-day at which a tracking's rule can fire.
type Slot struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ValidateSlots enforces the schedule shape: 1 to MaxSlots entries, each in
// clock range, no duplicate (hour, minute) pairs.
func ValidateSlots(slots []Slot) error {
	if len(slots) == 0 {
		return fmt.Errorf("%w: at least one slot required", ErrInvalidSlots)
	}
	if len(slots) > MaxSlots {
		return fmt.Errorf("%w: at most %d slots allowed, got %d", ErrInvalidSlots, MaxSlots, len(slots))
	}
	seen := make(map[Slot]bool, len(slots))
	for _, s := range slots {
		if s.Hour < 0 || s.Hour > 23 {
			return fmt.Errorf("%w: hour %d out of range 0-23", ErrInvalidSlots, s.Hour)
		}
		if s.Minute < 0 || s.Minute > 59 {
			return fmt.Errorf("%w: minute %d out of range 0-59", ErrInvalidSlots, s.Minute)
		}
		if seen[s] {
			return fmt.Errorf("%w: duplicate slot %02d:%02d", ErrInvalidSlots, s.Hour, s.Minute)
		}
		seen[s] = true
	}
	return nil
}
