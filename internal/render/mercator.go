package render

import "math"

const earthRadiusM = 6371000.0

// mercator maps a geographic bounding box onto a pixel rectangle using the
// spherical Mercator projection: linear in longitude, ln(tan(π/4+φ/2)) in
// latitude.
type mercator struct {
	minLon, maxLon float64
	minY, maxY     float64 // projected latitude extent
	width, height  int
}

func newMercator(minLon, maxLon, minLat, maxLat float64, width, height int) *mercator {
	return &mercator{
		minLon: minLon,
		maxLon: maxLon,
		minY:   mercY(minLat),
		maxY:   mercY(maxLat),
		width:  width,
		height: height,
	}
}

func mercY(latDeg float64) float64 {
	phi := latDeg * math.Pi / 180
	return math.Log(math.Tan(math.Pi/4 + phi/2))
}

func invMercY(y float64) float64 {
	return (2*math.Atan(math.Exp(y)) - math.Pi/2) * 180 / math.Pi
}

// toPixel projects lon/lat to pixel coordinates. Pixel y grows downward.
func (m *mercator) toPixel(lon, lat float64) (float64, float64) {
	x := (lon - m.minLon) / (m.maxLon - m.minLon) * float64(m.width)
	y := (m.maxY - mercY(lat)) / (m.maxY - m.minY) * float64(m.height)
	return x, y
}

// toGeo inverse-projects the center of pixel (px, py) to lon/lat.
func (m *mercator) toGeo(px, py int) (lon, lat float64) {
	lon = m.minLon + (float64(px)+0.5)/float64(m.width)*(m.maxLon-m.minLon)
	y := m.maxY - (float64(py)+0.5)/float64(m.height)*(m.maxY-m.minY)
	return lon, invMercY(y)
}

// azimuthRange returns the great-circle initial bearing (degrees clockwise
// from north) and surface distance in meters from (lat1,lon1) to (lat2,lon2).
func azimuthRange(lat1, lon1, lat2, lon2 float64) (azimuthDeg, rangeM float64) {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δλ := (lon2 - lon1) * math.Pi / 180

	sinφ1, cosφ1 := math.Sincos(φ1)
	sinφ2, cosφ2 := math.Sincos(φ2)
	sinΔλ, cosΔλ := math.Sincos(Δλ)

	az := math.Atan2(sinΔλ*cosφ2, cosφ1*sinφ2-sinφ1*cosφ2*cosΔλ) * 180 / math.Pi
	if az < 0 {
		az += 360
	}

	// Haversine distance.
	Δφ := φ2 - φ1
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + cosφ1*cosφ2*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	d := 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return az, d
}
