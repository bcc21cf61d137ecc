package recurrence

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Kind selects which calendar-date pattern a Rule carries. Exactly one
// payload field is set for a given kind; Validate rejects anything else.
type Kind string

const (
	KindInterval   Kind = "interval"
	KindDayOfWeek  Kind = "day_of_week"
	KindDayOfMonth Kind = "day_of_month"
	KindDayOfYear  Kind = "day_of_year"
	KindOneTime    Kind = "one_time"
)

type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
	UnitYears  IntervalUnit = "years"
)

type MonthlyMode string

const (
	MonthlyByDayNumber MonthlyMode = "by_day_number"
	MonthlyLastDay     MonthlyMode = "last_day"
	MonthlyNthWeekday  MonthlyMode = "nth_weekday"
)

type YearlyMode string

const (
	YearlyByDate     YearlyMode = "by_date"
	YearlyNthWeekday YearlyMode = "nth_weekday"
)

type IntervalSpec struct {
	Value int          `json:"value"`
	Unit  IntervalUnit `json:"unit"`
}

type MonthlySpec struct {
	Mode       MonthlyMode `json:"mode"`
	DayNumbers []int       `json:"day_numbers,omitempty"`
	Weekday    int         `json:"weekday,omitempty"`
	Ordinal    int         `json:"ordinal,omitempty"`
}

type YearlySpec struct {
	Mode    YearlyMode `json:"mode"`
	Month   int        `json:"month,omitempty"`
	Day     int        `json:"day,omitempty"`
	Weekday int        `json:"weekday,omitempty"`
	Ordinal int        `json:"ordinal,omitempty"`
}

// Date is a calendar date without a time-of-day, used by one-time rules.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Rule describes which calendar dates qualify for a tracking, independent of
// time-of-day. Build rules through the New* constructors; rules decoded from
// storage must pass Validate before use. Weekdays follow time.Weekday
// numbering (0=Sunday .. 6=Saturday).
type Rule struct {
	Kind     Kind          `json:"kind"`
	Interval *IntervalSpec `json:"interval,omitempty"`
	Weekdays []int         `json:"weekdays,omitempty"`
	Monthly  *MonthlySpec  `json:"monthly,omitempty"`
	Yearly   *YearlySpec   `json:"yearly,omitempty"`
	Date     *Date         `json:"date,omitempty"`
}

func NewInterval(value int, unit IntervalUnit) (Rule, error) {
	if value <= 0 {
		return Rule{}, fmt.Errorf("%w: interval value must be positive, got %d", ErrInvalidRule, value)
	}
	switch unit {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
	default:
		return Rule{}, fmt.Errorf("%w: unknown interval unit %q", ErrInvalidRule, unit)
	}
	return Rule{Kind: KindInterval, Interval: &IntervalSpec{Value: value, Unit: unit}}, nil
}

func NewDayOfWeek(days []int) (Rule, error) {
	cleaned, err := cleanSet(days, 0, 6, "weekday")
	if err != nil {
		return Rule{}, err
	}
	return Rule{Kind: KindDayOfWeek, Weekdays: cleaned}, nil
}

func NewByDayNumber(numbers []int) (Rule, error) {
	cleaned, err := cleanSet(numbers, 1, 31, "day number")
	if err != nil {
		return Rule{}, err
	}
	return Rule{Kind: KindDayOfMonth, Monthly: &MonthlySpec{Mode: MonthlyByDayNumber, DayNumbers: cleaned}}, nil
}

func NewLastDayOfMonth() Rule {
	return Rule{Kind: KindDayOfMonth, Monthly: &MonthlySpec{Mode: MonthlyLastDay}}
}

func NewNthWeekdayOfMonth(weekday, ordinal int) (Rule, error) {
	if err := checkWeekdayOrdinal(weekday, ordinal); err != nil {
		return Rule{}, err
	}
	return Rule{Kind: KindDayOfMonth, Monthly: &MonthlySpec{Mode: MonthlyNthWeekday, Weekday: weekday, Ordinal: ordinal}}, nil
}

func NewByDate(month, day int) (Rule, error) {
	if month < 1 || month > 12 {
		return Rule{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidRule, month)
	}
	if day < 1 || day > 31 {
		return Rule{}, fmt.Errorf("%w: day %d out of range 1-31", ErrInvalidRule, day)
	}
	return Rule{Kind: KindDayOfYear, Yearly: &YearlySpec{Mode: YearlyByDate, Month: month, Day: day}}, nil
}

func NewNthWeekdayOfYear(weekday, ordinal int) (Rule, error) {
	if err := checkWeekdayOrdinal(weekday, ordinal); err != nil {
		return Rule{}, err
	}
	return Rule{Kind: KindDayOfYear, Yearly: &YearlySpec{Mode: YearlyNthWeekday, Weekday: weekday, Ordinal: ordinal}}, nil
}

func NewOneTime(date Date) (Rule, error) {
	if date.Year <= 0 {
		return Rule{}, fmt.Errorf("%w: one-time year must be positive, got %d", ErrInvalidRule, date.Year)
	}
	if date.Month < 1 || date.Month > 12 {
		return Rule{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidRule, date.Month)
	}
	if date.Day < 1 || date.Day > 31 {
		return Rule{}, fmt.Errorf("%w: day %d out of range 1-31", ErrInvalidRule, date.Day)
	}
	return Rule{Kind: KindOneTime, Date: &date}, nil
}

// Recurring reports whether the rule produces more than one occurrence.
func (r Rule) Recurring() bool {
	return r.Kind != KindOneTime
}

// Validate checks a rule that did not come out of a constructor, typically
// one decoded from a stored JSON column.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindInterval:
		if r.Interval == nil {
			return fmt.Errorf("%w: interval rule without interval spec", ErrInvalidRule)
		}
		if err := r.checkPayloads(true, false, false, false, false); err != nil {
			return err
		}
		_, err := NewInterval(r.Interval.Value, r.Interval.Unit)
		return err
	case KindDayOfWeek:
		if err := r.checkPayloads(false, true, false, false, false); err != nil {
			return err
		}
		_, err := NewDayOfWeek(r.Weekdays)
		return err
	case KindDayOfMonth:
		if r.Monthly == nil {
			return fmt.Errorf("%w: day-of-month rule without monthly spec", ErrInvalidRule)
		}
		if err := r.checkPayloads(false, false, true, false, false); err != nil {
			return err
		}
		switch r.Monthly.Mode {
		case MonthlyByDayNumber:
			_, err := NewByDayNumber(r.Monthly.DayNumbers)
			return err
		case MonthlyLastDay:
			return nil
		case MonthlyNthWeekday:
			return checkWeekdayOrdinal(r.Monthly.Weekday, r.Monthly.Ordinal)
		default:
			return fmt.Errorf("%w: unknown monthly mode %q", ErrInvalidRule, r.Monthly.Mode)
		}
	case KindDayOfYear:
		if r.Yearly == nil {
			return fmt.Errorf("%w: day-of-year rule without yearly spec", ErrInvalidRule)
		}
		if err := r.checkPayloads(false, false, false, true, false); err != nil {
			return err
		}
		switch r.Yearly.Mode {
		case YearlyByDate:
			_, err := NewByDate(r.Yearly.Month, r.Yearly.Day)
			return err
		case YearlyNthWeekday:
			return checkWeekdayOrdinal(r.Yearly.Weekday, r.Yearly.Ordinal)
		default:
			return fmt.Errorf("%w: unknown yearly mode %q", ErrInvalidRule, r.Yearly.Mode)
		}
	case KindOneTime:
		if r.Date == nil {
			return fmt.Errorf("%w: one-time rule without date", ErrInvalidRule)
		}
		if err := r.checkPayloads(false, false, false, false, true); err != nil {
			return err
		}
		_, err := NewOneTime(*r.Date)
		return err
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}
}

func (r Rule) checkPayloads(interval, weekdays, monthly, yearly, date bool) error {
	if (r.Interval != nil) != interval ||
		(len(r.Weekdays) > 0) != weekdays ||
		(r.Monthly != nil) != monthly ||
		(r.Yearly != nil) != yearly ||
		(r.Date != nil) != date {
		return fmt.Errorf("%w: payload does not match kind %q", ErrInvalidRule, r.Kind)
	}
	return nil
}

func checkWeekdayOrdinal(weekday, ordinal int) error {
	if weekday < 0 || weekday > 6 {
		return fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidRule, weekday)
	}
	if ordinal < 1 || ordinal > 5 {
		return fmt.Errorf("%w: ordinal %d out of range 1-5", ErrInvalidRule, ordinal)
	}
	return nil
}

func cleanSet(values []int, min, max int, label string) ([]int, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty %s set", ErrInvalidRule, label)
	}
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)
	for i, v := range out {
		if v < min || v > max {
			return nil, fmt.Errorf("%w: %s %d out of range %d-%d", ErrInvalidRule, label, v, min, max)
		}
		if i > 0 && out[i] == out[i-1] {
			return nil, fmt.Errorf("%w: duplicate %s %d", ErrInvalidRule, label, v)
		}
	}
	return out, nil
}
