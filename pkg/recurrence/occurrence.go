package recurrence

import "time"

// SearchHorizonDays bounds the day-by-day scan for calendar-pattern rules.
// Some constructible rules (day number 31 with short months, fifth-weekday
// ordinals) have long gaps; exhausting the horizon yields "no occurrence"
// instead of an unbounded loop.
const SearchHorizonDays = 1000

// Month and year intervals step by these fixed day counts rather than true
// calendar months. Exact calendar stepping would shift observable reminder
// dates, so the approximation is kept and pinned by tests.
const (
	daysPerMonth = 30
	daysPerYear  = 365
)

// NextOccurrence returns the earliest instant strictly after from that
// carries one of the slot clocks, satisfies the rule's date predicate, and
// is not equal to exclude. The second return is false when no such instant
// exists within the search horizon. Pure: fixed inputs give a fixed answer.
func NextOccurrence(rule Rule, slots []Slot, from time.Time, exclude *time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, slot := range slots {
		candidate, ok := nextForSlot(rule, slot, from, exclude)
		if !ok {
			continue
		}
		if !found || candidate.Before(best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

func nextForSlot(rule Rule, slot Slot, from time.Time, exclude *time.Time) (time.Time, bool) {
	if rule.Kind == KindInterval {
		if rule.Interval == nil {
			return time.Time{}, false
		}
		return nextInterval(*rule.Interval, slot, from, exclude)
	}

	day := from
	for i := 0; i < SearchHorizonDays; i++ {
		y, m, d := day.Date()
		candidate := time.Date(y, m, d, slot.Hour, slot.Minute, 0, 0, from.Location())
		if candidate.After(from) && !isExcluded(candidate, exclude) && dateMatches(rule, candidate) {
			return candidate, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

func nextInterval(spec IntervalSpec, slot Slot, from time.Time, exclude *time.Time) (time.Time, bool) {
	days := spec.Value
	switch spec.Unit {
	case UnitWeeks:
		days = spec.Value * 7
	case UnitMonths:
		days = spec.Value * daysPerMonth
	case UnitYears:
		days = spec.Value * daysPerYear
	}
	step := time.Duration(days) * 24 * time.Hour

	y, m, d := from.Date()
	candidate := time.Date(y, m, d, slot.Hour, slot.Minute, 0, 0, from.Location())
	for !candidate.After(from) || isExcluded(candidate, exclude) {
		candidate = candidate.Add(step)
	}
	return candidate, true
}

func dateMatches(rule Rule, t time.Time) bool {
	switch rule.Kind {
	case KindDayOfWeek:
		for _, wd := range rule.Weekdays {
			if int(t.Weekday()) == wd {
				return true
			}
		}
		return false
	case KindDayOfMonth:
		return monthlyMatches(rule.Monthly, t)
	case KindDayOfYear:
		return yearlyMatches(rule.Yearly, t)
	case KindOneTime:
		if rule.Date == nil {
			return false
		}
		y, m, d := t.Date()
		return y == rule.Date.Year && int(m) == rule.Date.Month && d == rule.Date.Day
	default:
		return false
	}
}

func monthlyMatches(spec *MonthlySpec, t time.Time) bool {
	if spec == nil {
		return false
	}
	switch spec.Mode {
	case MonthlyByDayNumber:
		for _, n := range spec.DayNumbers {
			if t.Day() == n {
				return true
			}
		}
		return false
	case MonthlyLastDay:
		return t.AddDate(0, 0, 1).Day() == 1
	case MonthlyNthWeekday:
		return int(t.Weekday()) == spec.Weekday && (t.Day()-1)/7+1 == spec.Ordinal
	default:
		return false
	}
}

func yearlyMatches(spec *YearlySpec, t time.Time) bool {
	if spec == nil {
		return false
	}
	switch spec.Mode {
	case YearlyByDate:
		return int(t.Month()) == spec.Month && t.Day() == spec.Day
	case YearlyNthWeekday:
		return int(t.Weekday()) == spec.Weekday && (t.YearDay()-1)/7+1 == spec.Ordinal
	default:
		return false
	}
}

func isExcluded(candidate time.Time, exclude *time.Time) bool {
	return exclude != nil && candidate.Equal(*exclude)
}
