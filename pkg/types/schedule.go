package types

import "time"

// searchHorizonHours bounds the transition scan to roughly two years so a
// schedule that never transitions cannot loop forever.
const searchHorizonHours = 2 * 366 * 24

// TariffSchedule is an ordered set of TimePatterns defining when a
// time-varying tariff applies. Patterns need not be disjoint: the first
// pattern in declaration order that matches a timestamp is the active one.
type TariffSchedule struct {
	patterns []TimePattern

	// per-dimension unions across all patterns, used to fast-reject
	// timestamps that cannot match any pattern
	hours    calendarSet
	weekdays calendarSet
	months   calendarSet
	quarters calendarSet
}

// NewTariffSchedule builds a schedule from patterns in priority order. A
// schedule with no patterns is never active.
func NewTariffSchedule(patterns ...TimePattern) TariffSchedule {
	s := TariffSchedule{patterns: patterns}
	for _, p := range patterns {
		s.hours = s.hours.union(p.hours)
		s.weekdays = s.weekdays.union(p.weekdays)
		s.months = s.months.union(p.months)
		s.quarters = s.quarters.union(p.quarters)
	}
	return s
}

// Patterns returns the schedule's patterns in declaration order.
func (s TariffSchedule) Patterns() []TimePattern {
	out := make([]TimePattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// ActivePattern returns the first pattern matching t, in declaration order.
func (s TariffSchedule) ActivePattern(t time.Time) (TimePattern, bool) {
	if !s.hours.contains(t.Hour()) ||
		!s.weekdays.contains(isoWeekday(t)) ||
		!s.months.contains(int(t.Month())) ||
		!s.quarters.contains(quarterOf(t.Month())) {
		return TimePattern{}, false
	}
	for _, p := range s.patterns {
		if p.Matches(t) {
			return p, true
		}
	}
	return TimePattern{}, false
}

// IsActive reports whether any pattern matches t.
func (s TariffSchedule) IsActive(t time.Time) bool {
	_, ok := s.ActivePattern(t)
	return ok
}

// unconstrained reports whether every dimension covers its full domain, i.e.
// the schedule is always active and has no transitions.
func (s TariffSchedule) unconstrained() bool {
	return s.hours.full() && s.weekdays.full() && s.months.full() && s.quarters.full()
}

// StartsAt returns the earliest whole-hour boundary strictly after from at
// which the schedule becomes active. It returns the zero time when the
// schedule is always active, never active, or no activation occurs within the
// search horizon.
func (s TariffSchedule) StartsAt(from time.Time) time.Time {
	if len(s.patterns) == 0 || s.unconstrained() {
		return time.Time{}
	}
	return s.scan(from, true)
}

// EndsAt is the symmetric search for the next whole-hour boundary at which
// the schedule becomes inactive.
func (s TariffSchedule) EndsAt(from time.Time) time.Time {
	if len(s.patterns) == 0 || s.unconstrained() {
		return time.Time{}
	}
	return s.scan(from, false)
}

func (s TariffSchedule) scan(from time.Time, wantActive bool) time.Time {
	// Stepping by absolute hours keeps the scan correct across DST
	// transitions: a skipped local hour is simply never visited and a
	// repeated one is visited twice, with distinct instants.
	check := nextHourBoundary(from)
	for i := 0; i < searchHorizonHours; i++ {
		if s.IsActive(check) == wantActive {
			return check
		}
		check = check.Add(time.Hour)
	}
	return time.Time{}
}

// nextHourBoundary rounds t up to the next whole hour in t's location.
func nextHourBoundary(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Add(time.Hour)
}
