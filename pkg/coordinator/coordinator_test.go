package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tariffiq/tariffiq/pkg/dso"
	"github.com/tariffiq/tariffiq/pkg/engine"
	"github.com/tariffiq/tariffiq/pkg/types"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) HourlyStats(ctx context.Context, sensorID string, start, end time.Time) ([]types.StatRow, error) {
	args := m.Called(ctx, sensorID, start, end)
	if rows := args.Get(0); rows != nil {
		return rows.([]types.StatRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) Close() error {
	return m.Called().Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReport(ctx context.Context, report types.CostReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// stubSource serves fixed sensor readings.
type stubSource map[string]float64

func (s stubSource) Float(ctx context.Context, id string) float64 {
	return s[id]
}

func fp(v float64) *float64 { return &v }

func testCoordinator(t *testing.T, stats *mockProvider, pub *mockPublisher, now time.Time) *Coordinator {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	def, err := dso.Configured().Get("KungalvEnergi-Standard")
	require.NoError(t, err)

	return &Coordinator{
		def: def,
		settings: types.Settings{
			Name:         "test",
			DSO:          def.Name,
			FuseSize:     "16",
			EnergySensor: "sensor.energy",
			PowerSensor:  "sensor.power",
		},
		engine:    engine.New(),
		stats:     stats,
		source:    stubSource{"sensor.energy": 1000.0, "sensor.power": 2000.0},
		publisher: pub,
		interval:  time.Minute,
		loc:       loc,
		now:       func() time.Time { return now },
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)
	now := time.Date(2024, time.January, 15, 14, 30, 0, 0, loc)
	monthStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, loc)

	t.Run("publishes the evaluated report", func(t *testing.T) {
		stats := &mockProvider{}
		pub := &mockPublisher{}
		c := testCoordinator(t, stats, pub, now)

		rows := []types.StatRow{
			{Start: time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC), Change: fp(3.0)},
		}
		stats.On("HourlyStats", ctx, "sensor.energy", monthStart, now).Return(rows, nil)

		var published types.CostReport
		pub.On("PublishReport", ctx, mock.AnythingOfType("types.CostReport")).
			Run(func(args mock.Arguments) {
				published = args.Get(1).(types.CostReport)
			}).
			Return(nil)

		c.refresh(ctx)

		stats.AssertExpectations(t)
		pub.AssertExpectations(t)

		assert.True(t, published.TariffActive)
		assert.InDelta(t, 526.6, published.VariableCost, 0.001)
		// the UTC row is 09:00 local, within the tariff window
		assert.Equal(t, 3.0, published.Peaks)
		assert.Equal(t, "SEK", published.Currency)
	})

	t.Run("statistics failure still evaluates and publishes", func(t *testing.T) {
		stats := &mockProvider{}
		pub := &mockPublisher{}
		c := testCoordinator(t, stats, pub, now)

		stats.On("HourlyStats", ctx, "sensor.energy", monthStart, now).
			Return(nil, errors.New("database locked"))

		var published types.CostReport
		pub.On("PublishReport", ctx, mock.AnythingOfType("types.CostReport")).
			Run(func(args mock.Arguments) {
				published = args.Get(1).(types.CostReport)
			}).
			Return(nil)

		c.refresh(ctx)

		pub.AssertExpectations(t)
		assert.Equal(t, 0.0, published.Peaks)
		assert.InDelta(t, 526.6, published.VariableCost, 0.001)
	})

	t.Run("publish failure does not panic", func(t *testing.T) {
		stats := &mockProvider{}
		pub := &mockPublisher{}
		c := testCoordinator(t, stats, pub, now)

		stats.On("HourlyStats", ctx, "sensor.energy", monthStart, now).Return(nil, nil)
		pub.On("PublishReport", ctx, mock.AnythingOfType("types.CostReport")).
			Return(errors.New("broker gone"))

		c.refresh(ctx)
		pub.AssertExpectations(t)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, loc)

	stats := &mockProvider{}
	pub := &mockPublisher{}
	c := testCoordinator(t, stats, pub, now)

	stats.On("HourlyStats", mock.Anything, "sensor.energy", mock.Anything, mock.Anything).Return(nil, nil)
	pub.On("PublishReport", mock.Anything, mock.AnythingOfType("types.CostReport")).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop after cancel")
	}
}
