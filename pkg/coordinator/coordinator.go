// Package coordinator drives the periodic evaluation loop: it gathers
// sensor readings and recorder history, runs the cost engine, and publishes
// the resulting report.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/tariffiq/tariffiq/pkg/dso"
	"github.com/tariffiq/tariffiq/pkg/engine"
	"github.com/tariffiq/tariffiq/pkg/log"
	"github.com/tariffiq/tariffiq/pkg/statistics"
	"github.com/tariffiq/tariffiq/pkg/types"
)

// StateSource yields the latest numeric reading for a sensor.
type StateSource interface {
	Float(ctx context.Context, id string) float64
}

// Publisher delivers a finished cost report.
type Publisher interface {
	PublishReport(ctx context.Context, report types.CostReport) error
}

// Coordinator owns one installation's evaluation loop.
type Coordinator struct {
	def       *dso.Definition
	settings  types.Settings
	engine    *engine.Engine
	stats     statistics.Provider
	source    StateSource
	publisher Publisher
	interval  time.Duration
	loc       *time.Location

	// now is swapped out in tests
	now func() time.Time
}

// Configured returns a Coordinator configured via lflag. The installation
// settings are validated and resolved against the registry once flags are
// parsed; an invalid configuration panics since the process cannot do
// anything useful without one.
func Configured(reg *dso.Registry, stats statistics.Provider, source StateSource, publisher Publisher) *Coordinator {
	name := lflag.String("name", "home", "name of this installation")
	dsoName := lflag.RequiredString("dso", "name of the grid operator, like Ellevio-Hus")
	fuseSize := lflag.RequiredString("fuse-size", "main fuse size in amps, like 16")
	energySensor := lflag.RequiredString("energy-sensor", "id of the accumulated energy sensor in kWh")
	powerSensor := lflag.RequiredString("power-sensor", "id of the momentary power sensor in W")
	interval := lflag.Duration("update-interval", 5*time.Minute, "how often to re-evaluate costs")
	timezone := lflag.String("timezone", "Europe/Stockholm", "IANA timezone the tariffs are defined in")

	c := &Coordinator{
		engine: engine.New(),
		now:    time.Now,
	}
	lflag.Do(func() {
		c.settings = types.Settings{
			Name:         *name,
			DSO:          *dsoName,
			FuseSize:     *fuseSize,
			EnergySensor: *energySensor,
			PowerSensor:  *powerSensor,
		}
		if err := c.settings.Validate(); err != nil {
			panic(fmt.Errorf("invalid settings: %w", err))
		}
		def, err := reg.Get(c.settings.DSO)
		if err != nil {
			panic(fmt.Errorf("resolving grid operator %q: %w", c.settings.DSO, err))
		}
		if _, err := def.SelectedFees(c.settings.FuseSize); err != nil {
			panic(fmt.Errorf("resolving fuse size %q for %q: %w", c.settings.FuseSize, def.Name, err))
		}
		loc, err := time.LoadLocation(*timezone)
		if err != nil {
			panic(fmt.Errorf("loading timezone %q: %w", *timezone, err))
		}
		c.def = def
		c.stats = stats
		c.source = source
		c.publisher = publisher
		c.interval = *interval
		c.loc = loc
	})
	return c
}

// Settings returns the validated installation settings.
func (c *Coordinator) Settings() types.Settings {
	return c.settings
}

// Run evaluates immediately and then on every tick until the context is
// canceled.
func (c *Coordinator) Run(ctx context.Context) error {
	log.Ctx(ctx).InfoContext(
		ctx,
		"starting coordinator",
		slog.String("name", c.settings.Name),
		slog.String("dso", c.def.Name),
		slog.Duration("interval", c.interval),
	)
	c.refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Ctx(ctx).InfoContext(ctx, "stopping coordinator")
			return ctx.Err()
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

// refresh runs a single evaluation cycle. Failures to read history or to
// publish are logged and the loop carries on; only the evaluation itself is
// allowed to reject the cycle.
func (c *Coordinator) refresh(ctx context.Context) {
	now := c.now().In(c.loc)

	energyKWH := c.source.Float(ctx, c.settings.EnergySensor)
	powerW := c.source.Float(ctx, c.settings.PowerSensor)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.loc)
	rows, err := c.stats.HourlyStats(ctx, c.settings.EnergySensor, monthStart, now)
	if err != nil {
		log.Ctx(ctx).WarnContext(
			ctx,
			"could not read hourly statistics, evaluating without history",
			slog.String("sensor", c.settings.EnergySensor),
			slog.Any("error", err),
		)
		rows = nil
	}
	for i := range rows {
		rows[i].Start = rows[i].Start.In(c.loc)
	}

	report, err := c.engine.Evaluate(ctx, c.def, c.settings.FuseSize, now, energyKWH, powerW, rows)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "evaluation failed", slog.Any("error", err))
		return
	}
	if err := c.publisher.PublishReport(ctx, report); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "could not publish cost report", slog.Any("error", err))
	}
}
