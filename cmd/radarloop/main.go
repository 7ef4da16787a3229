// Command radarloop downloads the most recent NEXRAD Level III scans for one
// station, renders each as a Mercator-projected reflectivity map, and stitches
// the frames into a looping GIF.
//
// Usage:
//
//	radarloop [YYYY_MM_DD]
//
// With no argument the current UTC date is used. All other settings come from
// environment variables; see internal/config.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/radar-loop/internal/adapter/nexrad"
	"github.com/couchcryptid/radar-loop/internal/animate"
	"github.com/couchcryptid/radar-loop/internal/config"
	"github.com/couchcryptid/radar-loop/internal/observability"
	"github.com/couchcryptid/radar-loop/internal/pipeline"
	"github.com/couchcryptid/radar-loop/internal/render"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := nexrad.NewClient(cfg.BaseURL, cfg.HTTPTimeout, logger, metrics)

	renderer, err := render.New(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to build renderer", "error", err)
		os.Exit(1)
	}

	assembler := animate.NewAssembler(logger, metrics)

	p := pipeline.New(client, client, renderer, assembler, pipeline.Options{
		Station:       cfg.Station,
		Date:          cfg.Date,
		FrameCount:    cfg.FrameCount,
		FrameDuration: cfg.FrameDuration,
		OutputDir:     cfg.OutputDir,
		GIFPath:       cfg.GIFPath,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = p.Run(ctx)
	metrics.LogSummary(logger)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}
