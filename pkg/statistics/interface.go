// Package statistics reads time-bucketed historical sensor readings from the
// host's recorder store.
package statistics

import (
	"context"
	"time"

	"github.com/tariffiq/tariffiq/pkg/types"
)

// Provider supplies hourly statistics rows for a sensor over a time range,
// ordered by bucket start ascending. A failing provider is treated by callers
// as "no historical data", never as a fatal condition.
type Provider interface {
	HourlyStats(ctx context.Context, sensorID string, start, end time.Time) ([]types.StatRow, error)

	// Close releases any underlying resources.
	Close() error
}
