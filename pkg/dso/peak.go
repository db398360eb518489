package dso

import (
	"log/slog"
	"math"
	"sort"

	"github.com/tariffiq/tariffiq/pkg/types"
)

// PeakModel converts a series of hourly energy readings into a billable peak
// value. Implementations are pure; a DSO definition holds one instance
// (composition, not inheritance) so the billing strategy is a data choice.
type PeakModel interface {
	// FilterReadings retains only rows whose bucket start falls within the
	// schedule's tariff-active hours.
	FilterReadings(rows []types.StatRow, schedule types.TariffSchedule) []types.StatRow

	// PeakValue aggregates the filtered rows into the billable peak.
	// It returns 0.0 on empty input and never fails.
	PeakValue(rows []types.StatRow) float64

	// ObservedPeaks returns the top peaks by value descending, re-sorted by
	// bucket start descending for display.
	ObservedPeaks(rows []types.StatRow) []types.ObservedPeak
}

// SelectionPolicy controls which qualifying hours an AverageOfXHours model
// averages over.
type SelectionPolicy string

const (
	SelectMostExtreme SelectionPolicy = "most_extreme"
	SelectMostRecent  SelectionPolicy = "most_recent"
)

// TopNAverage bills the mean of the N largest hourly deltas observed in the
// billing period.
type TopNAverage struct {
	N int
}

func (m TopNAverage) FilterReadings(rows []types.StatRow, schedule types.TariffSchedule) []types.StatRow {
	return filterBySchedule(rows, schedule)
}

func (m TopNAverage) PeakValue(rows []types.StatRow) float64 {
	peaks := qualifyingPeaks(rows)
	if len(peaks) == 0 {
		return 0.0
	}
	sortByValueDesc(peaks)
	if len(peaks) > m.N {
		peaks = peaks[:m.N]
	}
	return round2(meanValue(peaks))
}

func (m TopNAverage) ObservedPeaks(rows []types.StatRow) []types.ObservedPeak {
	return topPeaksForDisplay(rows, m.N)
}

// AverageOfXHours bills the mean over a fixed count of qualifying hours.
// Whether those are the most extreme or the most recent hours is a per-DSO
// configuration.
type AverageOfXHours struct {
	Count  int
	Policy SelectionPolicy
}

func (m AverageOfXHours) FilterReadings(rows []types.StatRow, schedule types.TariffSchedule) []types.StatRow {
	return filterBySchedule(rows, schedule)
}

func (m AverageOfXHours) PeakValue(rows []types.StatRow) float64 {
	peaks := qualifyingPeaks(rows)
	if len(peaks) == 0 {
		return 0.0
	}
	switch m.Policy {
	case SelectMostRecent:
		sort.SliceStable(peaks, func(i, j int) bool {
			return peaks[i].Start.After(peaks[j].Start)
		})
	default:
		// most-extreme when unset
		sortByValueDesc(peaks)
	}
	if len(peaks) > m.Count {
		peaks = peaks[:m.Count]
	}
	return round2(meanValue(peaks))
}

func (m AverageOfXHours) ObservedPeaks(rows []types.StatRow) []types.ObservedPeak {
	return topPeaksForDisplay(rows, m.Count)
}

// filterBySchedule keeps rows whose bucket start is tariff-active. Malformed
// rows never fail the computation: they are skipped individually.
func filterBySchedule(rows []types.StatRow, schedule types.TariffSchedule) []types.StatRow {
	filtered := make([]types.StatRow, 0, len(rows))
	for _, row := range rows {
		if row.Start.IsZero() {
			slog.Debug("skipping statistics row without a bucket start")
			continue
		}
		if !schedule.IsActive(row.Start) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// qualifyingPeaks extracts (start, delta) observations from rows, rounding
// each delta to 2 decimals at the point of observation. Rows without a delta,
// or with a zero delta, are skipped.
func qualifyingPeaks(rows []types.StatRow) []types.ObservedPeak {
	peaks := make([]types.ObservedPeak, 0, len(rows))
	for _, row := range rows {
		if row.Start.IsZero() {
			slog.Debug("skipping statistics row without a bucket start")
			continue
		}
		if row.Change == nil {
			slog.Debug("skipping statistics row without a consumption delta", slog.Time("start", row.Start))
			continue
		}
		value := round2(*row.Change)
		if value == 0.0 {
			continue
		}
		peaks = append(peaks, types.ObservedPeak{Start: row.Start, Value: value})
	}
	return peaks
}

func topPeaksForDisplay(rows []types.StatRow, n int) []types.ObservedPeak {
	peaks := qualifyingPeaks(rows)
	sortByValueDesc(peaks)
	if len(peaks) > n {
		peaks = peaks[:n]
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Start.After(peaks[j].Start)
	})
	return peaks
}

func sortByValueDesc(peaks []types.ObservedPeak) {
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Value > peaks[j].Value
	})
}

func meanValue(peaks []types.ObservedPeak) float64 {
	var sum float64
	for _, p := range peaks {
		sum += p.Value
	}
	return sum / float64(len(peaks))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
