// Package animate assembles ordered frame sequences into looping GIF
// animations. It is the last pipeline stage and the only one with invariants
// of its own: frame order is preserved exactly as given, every output frame
// has the first frame's pixel dimensions, and the loop plays forever.
package animate

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // register frame decoders
	_ "image/png"
	"log/slog"
	"os"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/couchcryptid/radar-loop/internal/observability"
)

// ErrEmptySequence is returned when Assemble is called with no frames. The
// output path is left untouched in that case.
var ErrEmptySequence = errors.New("animate: empty frame sequence")

// Assembler encodes frame sequences into animations.
type Assembler struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAssembler creates an Assembler.
func NewAssembler(logger *slog.Logger, metrics *observability.Metrics) *Assembler {
	return &Assembler{logger: logger, metrics: metrics}
}

// Assemble encodes the frames at framePaths, in the given order, into a
// looping GIF at outputPath, each frame displayed for frameDuration. The
// caller supplies frames oldest first; Assemble performs no reordering,
// deduplication, or interpolation — the animation has exactly one displayed
// frame per input path.
//
// The first frame's pixel dimensions are canonical: any later frame whose
// dimensions differ is resampled to them with bilinear interpolation, never
// cropped and never rejected. An existing file at outputPath is overwritten.
func (a *Assembler) Assemble(framePaths []string, frameDuration time.Duration, outputPath string) error {
	if len(framePaths) == 0 {
		return ErrEmptySequence
	}
	start := time.Now()

	// GIF delays are in centiseconds.
	delay := int(frameDuration / (10 * time.Millisecond))

	anim := &gif.GIF{LoopCount: 0} // 0 = loop forever
	var canonical image.Rectangle

	for i, path := range framePaths {
		img, err := loadFrame(path)
		if err != nil {
			return err
		}

		if i == 0 {
			canonical = image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy())
		} else if !img.Bounds().Size().Eq(canonical.Size()) {
			a.logger.Debug("resampling frame to canonical size",
				"path", path,
				"from", img.Bounds().Size(), "to", canonical.Size())
			resized := image.NewNRGBA(canonical)
			xdraw.BiLinear.Scale(resized, canonical, img, img.Bounds(), xdraw.Src, nil)
			img = resized
		}

		anim.Image = append(anim.Image, quantize(img, canonical))
		anim.Delay = append(anim.Delay, delay)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create animation: %w", err)
	}
	if err := gif.EncodeAll(out, anim); err != nil {
		out.Close()
		return fmt.Errorf("encode animation: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write animation: %w", err)
	}

	a.metrics.GIFFrames.Set(float64(len(anim.Image)))
	a.metrics.AssembleDuration.Observe(time.Since(start).Seconds())
	a.logger.Info("animation assembled",
		"path", outputPath,
		"frames", len(anim.Image),
		"frame_duration", frameDuration,
		"size", canonical.Size())
	return nil
}

func loadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}

// quantize reduces a frame to a 256-color paletted image for GIF encoding,
// dithering with Floyd-Steinberg.
func quantize(img image.Image, bounds image.Rectangle) *image.Paletted {
	p := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(p, bounds, img, img.Bounds().Min)
	return p
}
