package statistics

import (
	"context"
	"time"

	"github.com/tariffiq/tariffiq/pkg/types"
)

// Empty is a Provider with no history. It backs setups that have not
// configured a recorder database: peak tracking simply reports zero.
type Empty struct{}

func (Empty) HourlyStats(ctx context.Context, sensorID string, start, end time.Time) ([]types.StatRow, error) {
	return nil, nil
}

func (Empty) Close() error { return nil }

// Static serves fixed rows per sensor, primarily for tests.
type Static map[string][]types.StatRow

func (s Static) HourlyStats(ctx context.Context, sensorID string, start, end time.Time) ([]types.StatRow, error) {
	var out []types.StatRow
	for _, row := range s[sensorID] {
		if row.Start.Before(start) || !row.Start.Before(end) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s Static) Close() error { return nil }
