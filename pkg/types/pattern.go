package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPattern is returned when a time pattern is constructed with an
// empty or out-of-domain calendar filter.
var ErrInvalidPattern = errors.New("invalid time pattern")

// Calendar dimension domains. Weekdays are ISO-style: 0=Monday, 6=Sunday.
const (
	minHour    = 0
	maxHour    = 23
	minWeekday = 0
	maxWeekday = 6
	minMonth   = 1
	maxMonth   = 12
	minQuarter = 1
	maxQuarter = 4
)

// calendarSet is the set of allowed values for one calendar dimension.
type calendarSet struct {
	members map[int]bool
	size    int // domain size, for detecting the unconstrained set
}

func newCalendarSet(dimension string, values []int, minVal, maxVal int) (calendarSet, error) {
	s := calendarSet{
		members: make(map[int]bool),
		size:    maxVal - minVal + 1,
	}
	if values == nil {
		// an unspecified dimension means the full domain, represented
		// explicitly so an empty set is never mistaken for "any"
		for v := minVal; v <= maxVal; v++ {
			s.members[v] = true
		}
		return s, nil
	}
	if len(values) == 0 {
		return s, fmt.Errorf("%w: empty %s set", ErrInvalidPattern, dimension)
	}
	for _, v := range values {
		if v < minVal || v > maxVal {
			return s, fmt.Errorf("%w: %s %d out of range [%d, %d]", ErrInvalidPattern, dimension, v, minVal, maxVal)
		}
		s.members[v] = true
	}
	return s, nil
}

func (s calendarSet) contains(v int) bool {
	return s.members[v]
}

// full reports whether the set covers the entire domain.
func (s calendarSet) full() bool {
	return len(s.members) == s.size
}

func (s calendarSet) union(other calendarSet) calendarSet {
	out := calendarSet{
		members: make(map[int]bool, len(s.members)+len(other.members)),
		size:    s.size,
	}
	if out.size == 0 {
		out.size = other.size
	}
	for v := range s.members {
		out.members[v] = true
	}
	for v := range other.members {
		out.members[v] = true
	}
	return out
}

// TimeFilters constrains a TimePattern per calendar dimension. A nil slice
// leaves that dimension unconstrained; an empty slice is rejected.
type TimeFilters struct {
	Hours    []int // 0..23
	Weekdays []int // 0=Monday .. 6=Sunday
	Months   []int // 1..12
	Quarters []int // 1..4
}

// TimePattern is an immutable calendar predicate with a tariff multiplier.
// It matches a timestamp when the hour, weekday, month, and quarter all fall
// within the pattern's sets.
type TimePattern struct {
	factor   float64
	hours    calendarSet
	weekdays calendarSet
	months   calendarSet
	quarters calendarSet
}

// NewTimePattern builds a pattern with the given tariff factor and filters.
// It returns ErrInvalidPattern when a supplied filter is empty or contains an
// out-of-domain value.
func NewTimePattern(factor float64, filters TimeFilters) (TimePattern, error) {
	p := TimePattern{factor: factor}
	var err error
	if p.hours, err = newCalendarSet("hour", filters.Hours, minHour, maxHour); err != nil {
		return TimePattern{}, err
	}
	if p.weekdays, err = newCalendarSet("weekday", filters.Weekdays, minWeekday, maxWeekday); err != nil {
		return TimePattern{}, err
	}
	if p.months, err = newCalendarSet("month", filters.Months, minMonth, maxMonth); err != nil {
		return TimePattern{}, err
	}
	if p.quarters, err = newCalendarSet("quarter", filters.Quarters, minQuarter, maxQuarter); err != nil {
		return TimePattern{}, err
	}
	return p, nil
}

// MustPattern is NewTimePattern that panics on error, for static tariff tables.
func MustPattern(factor float64, filters TimeFilters) TimePattern {
	p, err := NewTimePattern(factor, filters)
	if err != nil {
		panic(fmt.Errorf("failed to build time pattern: %w", err))
	}
	return p
}

// Factor returns the multiplier applied to billed quantities while the
// pattern is active.
func (p TimePattern) Factor() float64 {
	return p.factor
}

// Matches reports whether t falls within the pattern. The timestamp is
// evaluated in its own location.
func (p TimePattern) Matches(t time.Time) bool {
	return p.hours.contains(t.Hour()) &&
		p.weekdays.contains(isoWeekday(t)) &&
		p.months.contains(int(t.Month())) &&
		p.quarters.contains(quarterOf(t.Month()))
}

// isoWeekday maps Go's Sunday-based weekday to 0=Monday..6=Sunday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
