package sensor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		v := NewValues()
		v.Set("sensor.energy", "123.45")

		s, ok := v.State("sensor.energy")
		assert.True(t, ok)
		assert.Equal(t, "123.45", s)

		_, ok = v.State("sensor.other")
		assert.False(t, ok)
	})

	t.Run("latest write wins", func(t *testing.T) {
		v := NewValues()
		v.Set("sensor.energy", "1")
		v.Set("sensor.energy", "2")
		assert.Equal(t, 2.0, v.Float(ctx, "sensor.energy"))
	})

	t.Run("float parsing", func(t *testing.T) {
		v := NewValues()
		v.Set("sensor.energy", " 42.5 ")
		assert.Equal(t, 42.5, v.Float(ctx, "sensor.energy"))
	})

	t.Run("missing sensor is zero", func(t *testing.T) {
		v := NewValues()
		assert.Equal(t, 0.0, v.Float(ctx, "sensor.energy"))
	})

	t.Run("unavailable states are zero", func(t *testing.T) {
		v := NewValues()
		for _, state := range []string{"", "unavailable", "Unknown", "none"} {
			v.Set("sensor.energy", state)
			assert.Equal(t, 0.0, v.Float(ctx, "sensor.energy"), "state %q", state)
		}
	})

	t.Run("unparsable state is zero", func(t *testing.T) {
		v := NewValues()
		v.Set("sensor.energy", "on")
		assert.Equal(t, 0.0, v.Float(ctx, "sensor.energy"))
	})
}
