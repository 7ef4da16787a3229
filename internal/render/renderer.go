package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/couchcryptid/radar-loop/internal/config"
	"github.com/couchcryptid/radar-loop/internal/domain"
	"github.com/couchcryptid/radar-loop/internal/observability"
)

// gutterPx is the width of the colorbar column to the right of the map area.
const gutterPx = 140

// Renderer turns decoded scans into map-projected PNG frames. It implements
// pipeline.FrameRenderer.
type Renderer struct {
	minLon, maxLon float64
	minLat, maxLat float64
	size           int
	cmap           *colormap
	display        domain.DisplayOffset
	boundaries     []polyline
	logger         *slog.Logger
	metrics        *observability.Metrics
}

// New creates a Renderer from the run configuration. Boundaries come from
// cfg.BoundariesPath when set, otherwise the embedded set.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Renderer, error) {
	var (
		boundaries []polyline
		err        error
	)
	if cfg.BoundariesPath != "" {
		boundaries, err = LoadBoundaries(cfg.BoundariesPath)
	} else {
		boundaries, err = EmbeddedBoundaries()
	}
	if err != nil {
		return nil, err
	}

	return &Renderer{
		minLon:     cfg.MinLon,
		maxLon:     cfg.MaxLon,
		minLat:     cfg.MinLat,
		maxLat:     cfg.MaxLat,
		size:       cfg.ImageSize,
		cmap:       newColormap(cfg.ValueMin, cfg.ValueMax),
		display:    domain.DisplayOffset{Offset: cfg.DisplayOffset, Label: cfg.DisplayLabel},
		boundaries: boundaries,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Render projects the scan's reflectivity onto the configured bounding box,
// draws boundaries, colorbar, and timestamp, and writes the PNG into
// outputDir as <key-basename>_mercator.png, overwriting any existing file.
func (r *Renderer) Render(scan domain.Scan, outputDir string) (domain.Frame, error) {
	start := time.Now()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		r.metrics.RenderErrors.Inc()
		return domain.Frame{}, fmt.Errorf("create output dir: %w", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, r.size+gutterPx, r.size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r.drawReflectivity(img, scan)
	r.drawBoundaries(img)
	r.drawColorbar(img)
	r.drawTimestamp(img, scan.Time)

	path := filepath.Join(outputDir, scan.Key.Basename()+"_mercator.png")
	f, err := os.Create(path)
	if err != nil {
		r.metrics.RenderErrors.Inc()
		return domain.Frame{}, fmt.Errorf("create frame: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		r.metrics.RenderErrors.Inc()
		return domain.Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	if err := f.Close(); err != nil {
		r.metrics.RenderErrors.Inc()
		return domain.Frame{}, fmt.Errorf("write frame: %w", err)
	}

	r.metrics.FramesRendered.Inc()
	r.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("rendered frame", "key", scan.Key, "path", path,
		"size", fmt.Sprintf("%dx%d", r.size+gutterPx, r.size))

	return domain.Frame{Key: scan.Key, Path: path, ScanTime: scan.Time}, nil
}

// drawReflectivity samples the radial field at every map pixel via inverse
// projection. Pixels with no valid return keep the background.
func (r *Renderer) drawReflectivity(img *image.NRGBA, scan domain.Scan) {
	proj := newMercator(r.minLon, r.maxLon, r.minLat, r.maxLat, r.size, r.size)
	for py := 0; py < r.size; py++ {
		for px := 0; px < r.size; px++ {
			lon, lat := proj.toGeo(px, py)
			az, rng := azimuthRange(scan.Lat, scan.Lon, lat, lon)
			v, ok := scan.Field.Sample(az, rng)
			if !ok {
				continue
			}
			img.SetNRGBA(px, py, r.cmap.at(v))
		}
	}
}

func (r *Renderer) drawBoundaries(img *image.NRGBA) {
	proj := newMercator(r.minLon, r.maxLon, r.minLat, r.maxLat, r.size, r.size)
	black := color.NRGBA{0, 0, 0, 0xFF}
	for _, line := range r.boundaries {
		for i := 1; i < len(line); i++ {
			x0, y0 := proj.toPixel(line[i-1][0], line[i-1][1])
			x1, y1 := proj.toPixel(line[i][0], line[i][1])
			r.drawSegment(img, x0, y0, x1, y1, black)
		}
	}
}

// drawSegment draws a 2px-wide line clipped to the map area.
func (r *Renderer) drawSegment(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(x0 + (x1-x0)*t))
		y := int(math.Round(y0 + (y1-y0)*t))
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				if x+dx >= 0 && x+dx < r.size && y+dy >= 0 && y+dy < r.size {
					img.SetNRGBA(x+dx, y+dy, c)
				}
			}
		}
	}
}

func (r *Renderer) drawColorbar(img *image.NRGBA) {
	const margin = 40
	barX0 := r.size + 40
	barX1 := barX0 + 30
	barY0 := margin
	barY1 := r.size - margin
	black := color.NRGBA{0, 0, 0, 0xFF}

	for y := barY0; y < barY1; y++ {
		// Highest values at the top.
		frac := float64(barY1-y) / float64(barY1-barY0)
		v := r.cmap.vmin + frac*(r.cmap.vmax-r.cmap.vmin)
		c := r.cmap.at(v)
		for x := barX0; x < barX1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	// Border.
	for x := barX0 - 1; x <= barX1; x++ {
		img.SetNRGBA(x, barY0-1, black)
		img.SetNRGBA(x, barY1, black)
	}
	for y := barY0 - 1; y <= barY1; y++ {
		img.SetNRGBA(barX0-1, y, black)
		img.SetNRGBA(barX1, y, black)
	}

	// Ticks every 10 dBZ.
	first := math.Ceil(r.cmap.vmin/10) * 10
	for v := first; v <= r.cmap.vmax; v += 10 {
		frac := (v - r.cmap.vmin) / (r.cmap.vmax - r.cmap.vmin)
		y := barY1 - int(frac*float64(barY1-barY0))
		img.SetNRGBA(barX1+1, y, black)
		img.SetNRGBA(barX1+2, y, black)
		drawString(img, barX1+6, y+4, fmt.Sprintf("%g", v), black)
	}

	drawString(img, barX0-4, barY0-12, "dBZ", black)
}

// drawTimestamp overlays the display-time label top-left, white on a
// translucent black box.
func (r *Renderer) drawTimestamp(img *image.NRGBA, scanTime time.Time) {
	label := r.display.Format(scanTime)
	face := basicfont.Face7x13

	x := r.size / 50
	y := r.size / 20
	w := font.MeasureString(face, label).Ceil()
	pad := 4

	box := image.Rect(x-pad, y-face.Ascent-pad, x+w+pad, y+face.Descent+pad)
	draw.Draw(img, box, image.NewUniform(color.NRGBA{0, 0, 0, 0x80}), image.Point{}, draw.Over)

	drawString(img, x, y, label, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF})
}

func drawString(img *image.NRGBA, x, y int, s string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
