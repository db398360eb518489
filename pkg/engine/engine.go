// Package engine computes the per-evaluation cost report for a DSO tariff
// plan from live sensor readings and hourly statistics.
package engine

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/tariffiq/tariffiq/pkg/dso"
	"github.com/tariffiq/tariffiq/pkg/log"
	"github.com/tariffiq/tariffiq/pkg/types"
)

// Engine evaluates tariff plans. It holds no state: every call is an
// independent, side-effect-free computation (aside from logging), so a single
// Engine is safe for concurrent use.
type Engine struct{}

// New creates a new Engine.
func New() *Engine {
	return &Engine{}
}

// Evaluate computes the cost report for one polling tick.
//
// now must carry the host's configured time zone; history is the hourly
// statistics series for the energy sensor, expected to cover the current
// billing period (calendar month). Bad sensor data degrades to 0.0 with a
// logged warning; only configuration errors (unknown fuse size) are returned.
func (e *Engine) Evaluate(
	ctx context.Context,
	def *dso.Definition,
	fuseSize string,
	now time.Time,
	energyKWH float64,
	powerW float64,
	history []types.StatRow,
) (types.CostReport, error) {
	fees, err := def.SelectedFees(fuseSize)
	if err != nil {
		return types.CostReport{}, err
	}

	energyKWH = sanitizeReading(ctx, "energy", energyKWH)
	powerW = sanitizeReading(ctx, "power", powerW)

	report := types.CostReport{
		TariffActive: def.Schedule.IsActive(now),
		Fees:         fees,
		Currency:     def.Currency,
		FuseSize:     fuseSize,
	}
	if t := def.Schedule.StartsAt(now); !t.IsZero() {
		report.TariffStartsAt = &t
	}
	if t := def.Schedule.EndsAt(now); !t.IsZero() {
		report.TariffEndsAt = &t
	}

	report.FixedCost = fees.FixedFee * elapsedHoursOfYear(now) / totalHoursOfYear(now)
	report.VariableCost = energyKWH * fees.TransferFee

	report.CurrentHourConsumption = e.currentHourConsumption(ctx, now, energyKWH, history)
	if pattern, ok := def.Schedule.ActivePattern(now); ok {
		report.PredictedConsumption = (report.CurrentHourConsumption + powerW/1000) * pattern.Factor()
	}

	filtered := def.PeakModel.FilterReadings(billingPeriodRows(now, history), def.Schedule)
	report.Peaks = def.PeakModel.PeakValue(filtered)
	report.ObservedPeaks = def.PeakModel.ObservedPeaks(filtered)
	report.PeaksCost = fees.TariffCost * report.Peaks

	report.TotalDSOCost = report.FixedCost + report.VariableCost + report.PeaksCost

	log.Ctx(ctx).DebugContext(
		ctx,
		"evaluated tariff plan",
		slog.String("dso", def.Name),
		slog.Bool("tariffActive", report.TariffActive),
		slog.Float64("peaks", report.Peaks),
		slog.Float64("totalCost", report.TotalDSOCost),
	)
	return report, nil
}

// currentHourConsumption is the energy consumed since the start of the
// current hour: the live counter minus the counter state recorded for the
// current hour bucket. Missing or inconsistent data yields 0.0.
func (e *Engine) currentHourConsumption(ctx context.Context, now time.Time, energyKWH float64, history []types.StatRow) float64 {
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	for i := len(history) - 1; i >= 0; i-- {
		row := history[i]
		if !row.Start.Equal(hourStart) {
			continue
		}
		if row.State == nil {
			break
		}
		consumption := energyKWH - *row.State
		if consumption < 0 {
			log.Ctx(ctx).WarnContext(
				ctx,
				"energy counter went backwards, assuming zero consumption this hour",
				slog.Float64("reading", energyKWH),
				slog.Float64("hourStartState", *row.State),
			)
			return 0.0
		}
		return consumption
	}
	log.Ctx(ctx).DebugContext(ctx, "no statistics sample for the current hour", slog.Time("hourStart", hourStart))
	return 0.0
}

// billingPeriodRows clamps history to the current calendar month.
func billingPeriodRows(now time.Time, history []types.StatRow) []types.StatRow {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	rows := make([]types.StatRow, 0, len(history))
	for _, row := range history {
		if row.Start.Before(monthStart) || row.Start.After(now) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func sanitizeReading(ctx context.Context, name string, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		log.Ctx(ctx).WarnContext(ctx, "invalid sensor reading, substituting zero", slog.String("sensor", name), slog.Float64("value", v))
		return 0.0
	}
	return v
}

// elapsedHoursOfYear returns the count of whole hours between the start of
// the year and now, in now's location.
func elapsedHoursOfYear(now time.Time) float64 {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return math.Floor(now.Sub(yearStart).Hours())
}

// totalHoursOfYear is 8784 for leap years, 8760 otherwise. Computed over the
// full year in the same location so DST shifts cancel out.
func totalHoursOfYear(now time.Time) float64 {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	nextYearStart := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, now.Location())
	return nextYearStart.Sub(yearStart).Hours()
}
