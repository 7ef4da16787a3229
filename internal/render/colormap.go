package render

import "image/color"

// nwsReflectivity is the 16-step National Weather Service reflectivity color
// table, light cyan through magenta/white, spread evenly across the
// configured value range like a listed (non-interpolating) colormap.
var nwsReflectivity = []color.NRGBA{
	{0x64, 0x64, 0x64, 0xFF}, // gray, weakest returns
	{0x04, 0xE9, 0xE7, 0xFF},
	{0x01, 0x9F, 0xF4, 0xFF},
	{0x03, 0x00, 0xF4, 0xFF},
	{0x02, 0xFD, 0x02, 0xFF},
	{0x01, 0xC5, 0x01, 0xFF},
	{0x00, 0x8E, 0x00, 0xFF},
	{0xFD, 0xF8, 0x02, 0xFF},
	{0xE5, 0xBC, 0x00, 0xFF},
	{0xFD, 0x95, 0x00, 0xFF},
	{0xFD, 0x00, 0x00, 0xFF},
	{0xD4, 0x00, 0x00, 0xFF},
	{0xBC, 0x00, 0x00, 0xFF},
	{0xF8, 0x00, 0xFD, 0xFF},
	{0x98, 0x54, 0xC6, 0xFF},
	{0xFD, 0xFD, 0xFD, 0xFF}, // near-white, strongest returns
}

// colormap maps a value range onto the NWS reflectivity table. Values outside
// [vmin, vmax] clamp to the end colors, matching matplotlib's listed-colormap
// behavior.
type colormap struct {
	vmin, vmax float64
	colors     []color.NRGBA
}

func newColormap(vmin, vmax float64) *colormap {
	return &colormap{vmin: vmin, vmax: vmax, colors: nwsReflectivity}
}

func (c *colormap) at(v float64) color.NRGBA {
	n := len(c.colors)
	idx := int((v - c.vmin) / (c.vmax - c.vmin) * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return c.colors[idx]
}
