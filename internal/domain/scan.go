package domain

import (
	"math"
	"time"
)

// Radial is one ray of reflectivity data: a start azimuth (degrees clockwise
// from north), an angular width, and one value per range gate.
type Radial struct {
	StartAngle float64
	DeltaAngle float64
	Gates      []float32 // dBZ per gate
	Valid      []bool    // false where the raw level was below threshold or range folded
}

// ReflectivityField holds a full sweep of radials plus the gate geometry.
type ReflectivityField struct {
	FirstGateIndex int     // index of the first range gate with data
	GateSize       float64 // meters per gate
	Radials        []Radial

	// azimuthIndex maps tenth-degree azimuths to a radial index, built on
	// first use. The field is sampled pixel-by-pixel during rendering, so a
	// linear radial search per pixel would dominate render time.
	azimuthIndex []int16
}

// Sample returns the reflectivity at the given azimuth (degrees clockwise
// from north) and slant range in meters. The second return is false when the
// point is outside the sweep or the gate is masked.
//
// Not safe for concurrent use: the first call builds the azimuth index.
func (f *ReflectivityField) Sample(azimuthDeg, rangeMeters float64) (float64, bool) {
	if len(f.Radials) == 0 || f.GateSize <= 0 {
		return 0, false
	}
	if f.azimuthIndex == nil {
		f.buildAzimuthIndex()
	}

	az := math.Mod(azimuthDeg, 360)
	if az < 0 {
		az += 360
	}
	tenth := int(az * 10)
	if tenth >= len(f.azimuthIndex) {
		tenth = len(f.azimuthIndex) - 1
	}
	ri := f.azimuthIndex[tenth]
	if ri < 0 {
		return 0, false
	}
	r := &f.Radials[ri]

	gate := int(rangeMeters/f.GateSize) - f.FirstGateIndex
	if gate < 0 || gate >= len(r.Gates) {
		return 0, false
	}
	if !r.Valid[gate] {
		return 0, false
	}
	return float64(r.Gates[gate]), true
}

func (f *ReflectivityField) buildAzimuthIndex() {
	idx := make([]int16, 3600)
	for i := range idx {
		idx[i] = -1
	}
	for ri := range f.Radials {
		r := &f.Radials[ri]
		start := int(math.Round(r.StartAngle * 10))
		width := int(math.Round(r.DeltaAngle * 10))
		if width <= 0 {
			width = 1
		}
		for j := 0; j < width; j++ {
			t := (start + j) % 3600
			if t < 0 {
				t += 3600
			}
			idx[t] = int16(ri)
		}
	}
	f.azimuthIndex = idx
}

// Scan is one decoded Level III product: station geolocation, acquisition
// time, and the reflectivity sweep. Owned transiently between decode and
// render; never persisted.
type Scan struct {
	Key         ScanKey
	Lat         float64 // station latitude, degrees north
	Lon         float64 // station longitude, degrees east
	HeightFt    float64 // station height above sea level, feet
	ProductCode int16
	Time        time.Time // volume scan start, UTC
	Field       ReflectivityField
}
