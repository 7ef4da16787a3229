package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one run
// of the radar loop pipeline. The process has no metrics endpoint (it is a
// batch job, not a server); the registry is gathered at end of run and logged
// via [Metrics.LogSummary].
type Metrics struct {
	ScansListed    prometheus.Gauge
	ScansFetched   prometheus.Counter
	BytesFetched   prometheus.Counter
	FramesRendered prometheus.Counter
	GIFFrames      prometheus.Gauge

	FetchErrors  prometheus.Counter
	DecodeErrors prometheus.Counter
	RenderErrors prometheus.Counter

	FetchDuration    prometheus.Histogram
	RenderDuration   prometheus.Histogram
	AssembleDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates all pipeline metrics on a private registry. Each call is
// independent, so tests can construct as many as they like without
// "already registered" panics.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScansListed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radar_loop",
			Name:      "scans_listed",
			Help:      "Scan keys returned by the remote listing for this run.",
		}),
		ScansFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_loop",
			Name:      "scans_fetched_total",
			Help:      "Scan objects fetched and decoded.",
		}),
		BytesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_loop",
			Name:      "bytes_fetched_total",
			Help:      "Raw scan bytes retrieved from the bucket.",
		}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_loop",
			Name:      "frames_rendered_total",
			Help:      "PNG frames written to the output directory.",
		}),
		GIFFrames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radar_loop",
			Name:      "gif_frames",
			Help:      "Frames encoded into the output animation.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_loop",
			Name:      "fetch_errors_total",
			Help:      "Listing or object transfer failures.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_loop",
			Name:      "decode_errors_total",
			Help:      "Malformed Level III payloads.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_loop",
			Name:      "render_errors_total",
			Help:      "Frame rendering failures.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radar_loop",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one object GET.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radar_loop",
			Name:      "render_duration_seconds",
			Help:      "Duration of one frame render.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AssembleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radar_loop",
			Name:      "assemble_duration_seconds",
			Help:      "Duration of the final animation assembly.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.ScansListed,
		m.ScansFetched,
		m.BytesFetched,
		m.FramesRendered,
		m.GIFFrames,
		m.FetchErrors,
		m.DecodeErrors,
		m.RenderErrors,
		m.FetchDuration,
		m.RenderDuration,
		m.AssembleDuration,
	)

	return m
}

// LogSummary gathers the registry and logs every counter and gauge sample as
// one structured record. Histograms are reported by sample count.
func (m *Metrics) LogSummary(logger *slog.Logger) {
	families, err := m.registry.Gather()
	if err != nil {
		logger.Warn("gather metrics failed", "error", err)
		return
	}

	attrs := make([]any, 0, 2*len(families))
	for _, mf := range families {
		for _, sample := range mf.GetMetric() {
			switch {
			case sample.GetCounter() != nil:
				attrs = append(attrs, mf.GetName(), sample.GetCounter().GetValue())
			case sample.GetGauge() != nil:
				attrs = append(attrs, mf.GetName(), sample.GetGauge().GetValue())
			case sample.GetHistogram() != nil:
				attrs = append(attrs, mf.GetName()+"_count", sample.GetHistogram().GetSampleCount())
			}
		}
	}
	logger.Info("run summary", attrs...)
}
