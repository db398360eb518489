package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockholm(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)
	return loc
}

// winterDaySchedule is active November through March, 07:00-20:59.
func winterDaySchedule() TariffSchedule {
	return NewTariffSchedule(
		MustPattern(1.0, TimeFilters{
			Months: []int{1, 2, 3, 11, 12},
			Hours:  []int{7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
		}),
	)
}

func TestTariffScheduleActivePattern(t *testing.T) {
	t.Run("first matching pattern wins", func(t *testing.T) {
		s := NewTariffSchedule(
			MustPattern(0.5, TimeFilters{Hours: []int{22, 23, 0, 1, 2, 3, 4, 5}}),
			MustPattern(1.0, TimeFilters{}),
		)
		p, ok := s.ActivePattern(time.Date(2024, time.May, 1, 23, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, 0.5, p.Factor())

		p, ok = s.ActivePattern(time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, 1.0, p.Factor())
	})

	t.Run("no pattern matches", func(t *testing.T) {
		s := winterDaySchedule()
		_, ok := s.ActivePattern(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC))
		assert.False(t, ok)
		assert.False(t, s.IsActive(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("empty schedule is never active", func(t *testing.T) {
		s := NewTariffSchedule()
		assert.False(t, s.IsActive(time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)))
	})
}

func TestTariffScheduleStartsAt(t *testing.T) {
	loc := stockholm(t)

	t.Run("same day activation", func(t *testing.T) {
		s := winterDaySchedule()
		from := time.Date(2024, time.January, 15, 4, 30, 0, 0, loc)
		got := s.StartsAt(from)
		assert.Equal(t, time.Date(2024, time.January, 15, 7, 0, 0, 0, loc), got)
	})

	t.Run("already active returns the next active hour", func(t *testing.T) {
		s := winterDaySchedule()
		from := time.Date(2024, time.January, 15, 12, 0, 0, 0, loc)
		assert.Equal(t, time.Date(2024, time.January, 15, 13, 0, 0, 0, loc), s.StartsAt(from))
	})

	t.Run("off season activation", func(t *testing.T) {
		s := winterDaySchedule()
		from := time.Date(2024, time.June, 15, 12, 0, 0, 0, loc)
		got := s.StartsAt(from)
		assert.Equal(t, time.Date(2024, time.November, 1, 7, 0, 0, 0, loc), got)
	})

	t.Run("always active schedule has no transitions", func(t *testing.T) {
		s := NewTariffSchedule(MustPattern(1.0, TimeFilters{}))
		assert.True(t, s.StartsAt(time.Now()).IsZero())
		assert.True(t, s.EndsAt(time.Now()).IsZero())
	})

	t.Run("covering patterns with differing factors have no transitions", func(t *testing.T) {
		s := NewTariffSchedule(
			MustPattern(0.5, TimeFilters{Hours: []int{22, 23, 0, 1, 2, 3, 4, 5}}),
			MustPattern(1.0, TimeFilters{Hours: []int{6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}}),
		)
		assert.True(t, s.StartsAt(time.Now()).IsZero())
		assert.True(t, s.EndsAt(time.Now()).IsZero())
	})

	t.Run("empty schedule returns zero", func(t *testing.T) {
		s := NewTariffSchedule()
		assert.True(t, s.StartsAt(time.Now()).IsZero())
		assert.True(t, s.EndsAt(time.Now()).IsZero())
	})
}

func TestTariffScheduleEndsAt(t *testing.T) {
	loc := stockholm(t)
	s := winterDaySchedule()

	t.Run("same day deactivation", func(t *testing.T) {
		from := time.Date(2024, time.January, 15, 12, 15, 0, 0, loc)
		got := s.EndsAt(from)
		assert.Equal(t, time.Date(2024, time.January, 15, 21, 0, 0, 0, loc), got)
	})

	t.Run("already inactive ends immediately at next hour", func(t *testing.T) {
		from := time.Date(2024, time.January, 15, 22, 0, 0, 0, loc)
		assert.Equal(t, time.Date(2024, time.January, 15, 23, 0, 0, 0, loc), s.EndsAt(from))
	})
}

func TestTariffScheduleDST(t *testing.T) {
	loc := stockholm(t)

	t.Run("spring forward skips the missing hour", func(t *testing.T) {
		// 2024-03-31 02:00 CET jumps to 03:00 CEST; local hour 02 does
		// not exist. A pattern active only at local hour 02 must not be
		// found on that day.
		s := NewTariffSchedule(MustPattern(1.0, TimeFilters{Hours: []int{2}}))
		from := time.Date(2024, time.March, 31, 0, 30, 0, 0, loc)
		got := s.StartsAt(from)
		require.False(t, got.IsZero())
		assert.Equal(t, time.Date(2024, time.April, 1, 2, 0, 0, 0, loc), got)
	})

	t.Run("fall back still lands on the hour boundary", func(t *testing.T) {
		// 2024-10-27 03:00 CEST falls back to 02:00 CET; local hour 02
		// occurs twice. The scan must return the first instant at which
		// the schedule activates.
		s := NewTariffSchedule(MustPattern(1.0, TimeFilters{Hours: []int{2}}))
		from := time.Date(2024, time.October, 27, 0, 30, 0, 0, loc)
		got := s.StartsAt(from)
		require.False(t, got.IsZero())
		assert.Equal(t, 2, got.Hour())
		assert.Equal(t, 27, got.Day())
		// scanning by absolute hours from 01:00 CEST reaches 02:00 CEST
		// first, one absolute hour later
		assert.Equal(t, time.Date(2024, time.October, 27, 1, 0, 0, 0, loc).Add(time.Hour), got)
	})
}
