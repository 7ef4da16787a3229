// Package pipeline orchestrates one radar loop run: list the most recent
// scans, fetch and decode each, render each to a PNG frame, and assemble the
// frames into a looping GIF. The flow is strictly sequential and fail-fast:
// the first error from any stage aborts the run, leaving already-rendered
// frames on disk and writing no animation. Failed stages are not retried.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/radar-loop/internal/domain"
	"github.com/couchcryptid/radar-loop/internal/observability"
)

// Lister resolves the most recent count scan keys for a station and date,
// oldest first.
type Lister interface {
	ListRecentKeys(ctx context.Context, station, date string, count int) (domain.Chronological, error)
}

// FetchDecoder retrieves and decodes one scan.
type FetchDecoder interface {
	FetchScan(ctx context.Context, key domain.ScanKey) (domain.Scan, error)
}

// FrameRenderer writes one scan as a raster frame in outputDir.
type FrameRenderer interface {
	Render(scan domain.Scan, outputDir string) (domain.Frame, error)
}

// Assembler encodes ordered frames into a looping animation.
type Assembler interface {
	Assemble(framePaths []string, frameDuration time.Duration, outputPath string) error
}

// Options carries the run parameters the pipeline threads through its stages.
type Options struct {
	Station       string
	Date          string
	FrameCount    int
	FrameDuration time.Duration
	OutputDir     string
	GIFPath       string
}

// Pipeline wires the four stages together.
type Pipeline struct {
	lister    Lister
	fetcher   FetchDecoder
	renderer  FrameRenderer
	assembler Assembler
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(l Lister, f FetchDecoder, r FrameRenderer, a Assembler, opts Options,
	logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		lister:    l,
		fetcher:   f,
		renderer:  r,
		assembler: a,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes one complete list → fetch → render → assemble cycle.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("run started",
		"station", p.opts.Station,
		"date", p.opts.Date,
		"frame_count", p.opts.FrameCount)

	keys, err := p.lister.ListRecentKeys(ctx, p.opts.Station, p.opts.Date, p.opts.FrameCount)
	if err != nil {
		return fmt.Errorf("list scans: %w", err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no scans available for %s on %s", p.opts.Station, p.opts.Date)
	}
	p.metrics.ScansListed.Set(float64(len(keys)))

	frames := make(domain.FrameSequence, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		scan, err := p.fetcher.FetchScan(ctx, key)
		if err != nil {
			return fmt.Errorf("fetch scan: %w", err)
		}

		frame, err := p.renderer.Render(scan, p.opts.OutputDir)
		if err != nil {
			return fmt.Errorf("render %s: %w", key, err)
		}
		frames = append(frames, frame)
	}

	// keys is chronological, so frames already run oldest to newest.
	if err := p.assembler.Assemble(frames.Paths(), p.opts.FrameDuration, p.opts.GIFPath); err != nil {
		return fmt.Errorf("assemble animation: %w", err)
	}

	p.logger.Info("run complete", "animation", p.opts.GIFPath, "frames", len(frames))
	return nil
}
