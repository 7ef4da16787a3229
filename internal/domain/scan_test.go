package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// sweep builds a four-radial field covering the full circle in 90° steps,
// with 10 gates of 250 m each. Gate values encode radial*100+gate so tests
// can tell exactly which sample came back.
func sweep() *ReflectivityField {
	f := &ReflectivityField{GateSize: 250}
	for r := 0; r < 4; r++ {
		rad := Radial{
			StartAngle: float64(r * 90),
			DeltaAngle: 90,
			Gates:      make([]float32, 10),
			Valid:      make([]bool, 10),
		}
		for g := range rad.Gates {
			rad.Gates[g] = float32(r*100 + g)
			rad.Valid[g] = true
		}
		f.Radials = append(f.Radials, rad)
	}
	return f
}

func TestReflectivityField_Sample(t *testing.T) {
	f := sweep()

	t.Run("selects radial by azimuth and gate by range", func(t *testing.T) {
		v, ok := f.Sample(45, 625) // radial 0, gate 2
		assert.True(t, ok)
		assert.Equal(t, 2.0, v)

		v, ok = f.Sample(200, 2300) // radial 2, gate 9
		assert.True(t, ok)
		assert.Equal(t, 209.0, v)
	})

	t.Run("azimuth wraps", func(t *testing.T) {
		v, ok := f.Sample(365, 100)
		assert.True(t, ok)
		assert.Equal(t, 0.0, v)

		v, ok = f.Sample(-10, 100) // 350° → radial 3
		assert.True(t, ok)
		assert.Equal(t, 300.0, v)
	})

	t.Run("beyond last gate misses", func(t *testing.T) {
		_, ok := f.Sample(0, 2500)
		assert.False(t, ok)
	})

	t.Run("masked gate misses", func(t *testing.T) {
		f := sweep()
		f.Radials[1].Valid[3] = false
		_, ok := f.Sample(135, 875)
		assert.False(t, ok)
	})

	t.Run("first gate offset shifts range", func(t *testing.T) {
		f := sweep()
		f.FirstGateIndex = 2
		v, ok := f.Sample(0, 625) // gate index 2 - offset 2 = 0
		assert.True(t, ok)
		assert.Equal(t, 0.0, v)

		_, ok = f.Sample(0, 100) // before the first gate
		assert.False(t, ok)
	})

	t.Run("empty field misses", func(t *testing.T) {
		f := &ReflectivityField{}
		_, ok := f.Sample(0, 100)
		assert.False(t, ok)
	})
}

func TestDisplayOffset(t *testing.T) {
	cdt := DisplayOffset{Offset: -5 * time.Hour, Label: "CDT"}
	scan := time.Date(2024, 4, 26, 18, 13, 4, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 4, 26, 13, 13, 4, 0, time.UTC), cdt.Apply(scan))
	assert.Equal(t, "2024-04-26 13:13 CDT", cdt.Format(scan))

	// The policy is a fixed offset: a date in January shifts by the same 5
	// hours even though CDT would not be in effect then.
	jan := time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-14 22:00 CDT", cdt.Format(jan))

	t.Run("no label", func(t *testing.T) {
		utc := DisplayOffset{}
		assert.Equal(t, "2024-04-26 18:13", utc.Format(scan))
	})
}
