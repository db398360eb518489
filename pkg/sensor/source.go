// Package sensor caches live sensor states delivered over MQTT and publishes
// evaluated cost reports back for presentation.
package sensor

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/tariffiq/tariffiq/pkg/log"
)

// Values caches the most recent raw state reported for each sensor
// identifier. Writes come from the MQTT message callback, reads from the
// coordinator's polling goroutine.
type Values struct {
	mu     sync.RWMutex
	states map[string]string
}

// NewValues creates an empty cache.
func NewValues() *Values {
	return &Values{states: make(map[string]string)}
}

// Set stores the latest raw state for a sensor.
func (v *Values) Set(id, state string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.states[id] = state
}

// State returns the latest raw state for a sensor, if any was reported.
func (v *Values) State(id string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.states[id]
	return s, ok
}

// Float parses the latest state of a sensor as a float. Missing,
// unavailable, or unparsable states degrade to 0.0 with a logged warning so
// one bad reading never aborts an evaluation.
func (v *Values) Float(ctx context.Context, id string) float64 {
	raw, ok := v.State(id)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "sensor has not reported a state yet", slog.String("sensor", id))
		return 0.0
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unavailable", "unknown", "none":
		log.Ctx(ctx).WarnContext(ctx, "sensor state unavailable", slog.String("sensor", id), slog.String("state", raw))
		return 0.0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		log.Ctx(ctx).WarnContext(
			ctx,
			"could not parse sensor state as float",
			slog.String("sensor", id),
			slog.String("state", raw),
			slog.Any("error", err),
		)
		return 0.0
	}
	return f
}
