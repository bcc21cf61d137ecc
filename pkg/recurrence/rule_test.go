package recurrence

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewIntervalValidation(t *testing.T) {
	if _, err := NewInterval(0, UnitDays); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for zero interval, got %v", err)
	}
	if _, err := NewInterval(-2, UnitWeeks); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for negative interval, got %v", err)
	}
	if _, err := NewInterval(3, IntervalUnit("fortnights")); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for unknown unit, got %v", err)
	}
	rule, err := NewInterval(2, UnitWeeks)
	if err != nil {
		t.Fatalf("NewInterval failed: %v", err)
	}
	if rule.Kind != KindInterval || rule.Interval.Value != 2 || rule.Interval.Unit != UnitWeeks {
		t.Fatalf("unexpected rule: %+v", rule)
	}
}

func TestNewDayOfWeekValidation(t *testing.T) {
	if _, err := NewDayOfWeek(nil); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for empty weekday set, got %v", err)
	}
	if _, err := NewDayOfWeek([]int{7}); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for weekday 7, got %v", err)
	}
	if _, err := NewDayOfWeek([]int{1, 1}); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for duplicate weekday, got %v", err)
	}
	rule, err := NewDayOfWeek([]int{5, 1, 3})
	if err != nil {
		t.Fatalf("NewDayOfWeek failed: %v", err)
	}
	want := []int{1, 3, 5}
	for i, wd := range rule.Weekdays {
		if wd != want[i] {
			t.Fatalf("expected sorted weekdays %v, got %v", want, rule.Weekdays)
		}
	}
}

func TestNewByDayNumberValidation(t *testing.T) {
	if _, err := NewByDayNumber([]int{32}); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for day number 32, got %v", err)
	}
	if _, err := NewByDayNumber([]int{0}); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for day number 0, got %v", err)
	}
	if _, err := NewByDayNumber([]int{1, 15, 31}); err != nil {
		t.Fatalf("NewByDayNumber failed: %v", err)
	}
}

func TestNewNthWeekdayValidation(t *testing.T) {
	if _, err := NewNthWeekdayOfMonth(5, 0); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for ordinal 0, got %v", err)
	}
	if _, err := NewNthWeekdayOfMonth(5, 6); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for ordinal 6, got %v", err)
	}
	if _, err := NewNthWeekdayOfYear(-1, 2); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for weekday -1, got %v", err)
	}
	if _, err := NewNthWeekdayOfYear(0, 5); err != nil {
		t.Fatalf("NewNthWeekdayOfYear failed: %v", err)
	}
}

func TestNewByDateValidation(t *testing.T) {
	if _, err := NewByDate(13, 1); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for month 13, got %v", err)
	}
	if _, err := NewByDate(6, 0); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for day 0, got %v", err)
	}
	if _, err := NewByDate(12, 25); err != nil {
		t.Fatalf("NewByDate failed: %v", err)
	}
}

func TestNewOneTimeValidation(t *testing.T) {
	if _, err := NewOneTime(Date{Year: 2024, Month: 0, Day: 5}); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for month 0, got %v", err)
	}
	rule, err := NewOneTime(Date{Year: 2024, Month: 7, Day: 4})
	if err != nil {
		t.Fatalf("NewOneTime failed: %v", err)
	}
	if rule.Recurring() {
		t.Fatal("one-time rule reported as recurring")
	}
}

func TestValidateRejectsMixedPayloads(t *testing.T) {
	rule, err := NewDayOfWeek([]int{1})
	if err != nil {
		t.Fatalf("NewDayOfWeek failed: %v", err)
	}
	rule.Monthly = &MonthlySpec{Mode: MonthlyLastDay}
	if err := rule.Validate(); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for mixed payloads, got %v", err)
	}
}

func TestValidateRejectsMissingPayload(t *testing.T) {
	rule := Rule{Kind: KindDayOfYear}
	if err := rule.Validate(); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for missing yearly spec, got %v", err)
	}
	rule = Rule{Kind: Kind("hourly")}
	if err := rule.Validate(); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for unknown kind, got %v", err)
	}
}

func TestRuleJSONRoundTrip(t *testing.T) {
	rules := []Rule{
		NewLastDayOfMonth(),
	}
	if r, err := NewInterval(3, UnitMonths); err == nil {
		rules = append(rules, r)
	} else {
		t.Fatalf("NewInterval failed: %v", err)
	}
	if r, err := NewNthWeekdayOfMonth(5, 1); err == nil {
		rules = append(rules, r)
	} else {
		t.Fatalf("NewNthWeekdayOfMonth failed: %v", err)
	}
	if r, err := NewOneTime(Date{Year: 2025, Month: 3, Day: 14}); err == nil {
		rules = append(rules, r)
	} else {
		t.Fatalf("NewOneTime failed: %v", err)
	}

	for _, rule := range rules {
		raw, err := json.Marshal(rule)
		if err != nil {
			t.Fatalf("marshal failed for kind %s: %v", rule.Kind, err)
		}
		var decoded Rule
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("unmarshal failed for kind %s: %v", rule.Kind, err)
		}
		if err := decoded.Validate(); err != nil {
			t.Fatalf("decoded rule invalid for kind %s: %v", rule.Kind, err)
		}
		if decoded.Kind != rule.Kind {
			t.Fatalf("kind changed in round trip: %s != %s", decoded.Kind, rule.Kind)
		}
	}
}

func TestValidateSlots(t *testing.T) {
	if err := ValidateSlots(nil); !errors.Is(err, ErrInvalidSlots) {
		t.Fatalf("expected ErrInvalidSlots for empty slots, got %v", err)
	}
	six := make([]Slot, 6)
	for i := range six {
		six[i] = Slot{Hour: i, Minute: 0}
	}
	if err := ValidateSlots(six); !errors.Is(err, ErrInvalidSlots) {
		t.Fatalf("expected ErrInvalidSlots for six slots, got %v", err)
	}
	if err := ValidateSlots([]Slot{{Hour: 24, Minute: 0}}); !errors.Is(err, ErrInvalidSlots) {
		t.Fatalf("expected ErrInvalidSlots for hour 24, got %v", err)
	}
	if err := ValidateSlots([]Slot{{Hour: 9, Minute: 60}}); !errors.Is(err, ErrInvalidSlots) {
		t.Fatalf("expected ErrInvalidSlots for minute 60, got %v", err)
	}
	if err := ValidateSlots([]Slot{{Hour: 9, Minute: 0}, {Hour: 9, Minute: 0}}); !errors.Is(err, ErrInvalidSlots) {
		t.Fatalf("expected ErrInvalidSlots for duplicate slot, got %v", err)
	}
	if err := ValidateSlots([]Slot{{Hour: 9, Minute: 0}, {Hour: 21, Minute: 30}}); err != nil {
		t.Fatalf("ValidateSlots failed on valid slots: %v", err)
	}
}
