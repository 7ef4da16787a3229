package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/couchcryptid/radar-loop/internal/domain"
)

// dateTokenRe matches the bucket's date token format, e.g. "2024_04_26".
var dateTokenRe = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}$`)

// Config holds all run settings, populated from environment variables plus
// the optional positional date argument.
type Config struct {
	Station string
	Date    string // bucket date token, YYYY_MM_DD, UTC
	BaseURL string

	FrameCount    int
	FrameDuration time.Duration
	OutputDir     string
	GIFPath       string

	HTTPTimeout time.Duration

	// Geographic bounding box of the rendered map, degrees.
	MinLon, MaxLon float64
	MinLat, MaxLat float64

	// Colorscale range, dBZ.
	ValueMin, ValueMax float64

	ImageSize int // rendered map area is ImageSize x ImageSize pixels

	DisplayOffset  time.Duration // fixed UTC offset for frame labels
	DisplayLabel   string
	BoundariesPath string // optional GeoJSON overriding the embedded boundaries

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and the remaining
// command-line arguments, applying defaults where unset. args holds the
// positional arguments after the program name; the only one accepted is a
// date token, defaulting to the current UTC date.
func Load(args []string) (*Config, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one argument (a YYYY_MM_DD date), got %d", len(args))
	}

	date := domain.Today()
	if len(args) == 1 {
		date = args[0]
	}
	if !dateTokenRe.MatchString(date) {
		return nil, fmt.Errorf("invalid date %q: want YYYY_MM_DD", date)
	}

	frameCount, err := envInt("FRAME_COUNT", 5)
	if err != nil {
		return nil, err
	}
	if frameCount < 1 || frameCount > 100 {
		return nil, fmt.Errorf("FRAME_COUNT must be 1..100, got %d", frameCount)
	}

	frameDuration, err := envDuration("FRAME_DURATION", 800*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if frameDuration <= 0 {
		return nil, fmt.Errorf("FRAME_DURATION must be positive, got %s", frameDuration)
	}

	httpTimeout, err := envDuration("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	if httpTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", httpTimeout)
	}

	imageSize, err := envInt("IMAGE_SIZE", 1200)
	if err != nil {
		return nil, err
	}
	if imageSize < 100 || imageSize > 4000 {
		return nil, fmt.Errorf("IMAGE_SIZE must be 100..4000, got %d", imageSize)
	}

	displayOffset, err := envDuration("DISPLAY_UTC_OFFSET", -5*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Station: envOrDefault("STATION", "MOB_N0B"),
		Date:    date,
		BaseURL: envOrDefault("BASE_URL", "https://unidata-nexrad-level3.s3.amazonaws.com/"),

		FrameCount:    frameCount,
		FrameDuration: frameDuration,
		OutputDir:     envOrDefault("OUTPUT_DIR", "nexrad"),
		GIFPath:       envOrDefault("GIF_PATH", "radar_loop.gif"),

		HTTPTimeout: httpTimeout,

		ImageSize: imageSize,

		DisplayOffset:  displayOffset,
		DisplayLabel:   envOrDefault("DISPLAY_TZ_LABEL", "CDT"),
		BoundariesPath: os.Getenv("BOUNDARIES_PATH"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
	}

	if cfg.Station == "" {
		return nil, fmt.Errorf("STATION is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL is required")
	}

	if cfg.MinLon, err = envFloat("MIN_LON", -90); err != nil {
		return nil, err
	}
	if cfg.MaxLon, err = envFloat("MAX_LON", -85); err != nil {
		return nil, err
	}
	if cfg.MinLat, err = envFloat("MIN_LAT", 30); err != nil {
		return nil, err
	}
	if cfg.MaxLat, err = envFloat("MAX_LAT", 33); err != nil {
		return nil, err
	}
	if cfg.MinLon >= cfg.MaxLon {
		return nil, fmt.Errorf("MIN_LON (%g) must be less than MAX_LON (%g)", cfg.MinLon, cfg.MaxLon)
	}
	if cfg.MinLat >= cfg.MaxLat {
		return nil, fmt.Errorf("MIN_LAT (%g) must be less than MAX_LAT (%g)", cfg.MinLat, cfg.MaxLat)
	}
	if cfg.MaxLat >= 85 || cfg.MinLat <= -85 {
		return nil, fmt.Errorf("latitude bounds must be within ±85° for Mercator projection")
	}

	if cfg.ValueMin, err = envFloat("VALUE_MIN", -10); err != nil {
		return nil, err
	}
	if cfg.ValueMax, err = envFloat("VALUE_MAX", 70); err != nil {
		return nil, err
	}
	if cfg.ValueMin >= cfg.ValueMax {
		return nil, fmt.Errorf("VALUE_MIN (%g) must be less than VALUE_MAX (%g)", cfg.ValueMin, cfg.ValueMax)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}
