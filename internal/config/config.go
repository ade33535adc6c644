package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"iqamahs/core-go/internal/mapview"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/widget"
)

// Config holds file and environment based settings.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	InspectAddr string `yaml:"inspect_addr"`
	DatasetPath string `yaml:"dataset_path"`
	Map         Map    `yaml:"map"`
}

type Map struct {
	FitDelay       Duration `yaml:"fit_delay"`
	SizeCheckDelay Duration `yaml:"size_check_delay"`
	SelectZoom     float64  `yaml:"select_zoom"`
	SingleZoom     float64  `yaml:"single_zoom"`
	FitPadding     int      `yaml:"fit_padding"`
	FitMaxZoom     float64  `yaml:"fit_max_zoom"`
	TileURL        string   `yaml:"tile_url"`
	Attribution    string   `yaml:"attribution"`
	Subdomains     string   `yaml:"subdomains"`
	MaxZoom        int      `yaml:"max_zoom"`
}

// Duration accepts Go duration strings such as "150ms" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(v)
	return nil
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Map: Map{
			FitDelay:       Duration(mapview.DefaultFitDelay),
			SizeCheckDelay: Duration(mapview.DefaultSizeCheckDelay),
			SelectZoom:     mapview.DefaultSelectZoom,
			SingleZoom:     mapview.DefaultSingleZoom,
			FitPadding:     mapview.DefaultFitPadding,
			FitMaxZoom:     mapview.DefaultFitMaxZoom,
			TileURL:        "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}{r}.png",
			Attribution:    "© OpenStreetMap contributors © CARTO",
			Subdomains:     "abcd",
			MaxZoom:        20,
		},
	}
}

// Load applies, in order: defaults, the YAML file at path (if any), then
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFile = envOr("LOG_FILE", c.LogFile)
	c.InspectAddr = envOr("INSPECT_ADDR", c.InspectAddr)
	c.DatasetPath = envOr("DATASET_PATH", c.DatasetPath)
	c.Map.TileURL = envOr("MAP_TILE_URL", c.Map.TileURL)

	if v := os.Getenv("MAP_FIT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MAP_FIT_DELAY: %w", err)
		}
		c.Map.FitDelay = Duration(d)
	}
	if v := os.Getenv("MAP_FIT_MAX_ZOOM"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MAP_FIT_MAX_ZOOM: %w", err)
		}
		c.Map.FitMaxZoom = z
	}
	return nil
}

// MapOptions converts the map section into controller options.
func (c Config) MapOptions() mapview.Options {
	return mapview.Options{
		SizeCheckDelay: time.Duration(c.Map.SizeCheckDelay),
		FitDelay:       time.Duration(c.Map.FitDelay),
		SelectZoom:     c.Map.SelectZoom,
		SingleZoom:     c.Map.SingleZoom,
		FitPadding:     fitPadding(c.Map.FitPadding),
		FitMaxZoom:     c.Map.FitMaxZoom,
		Widget: widget.Options{
			ZoomControlPosition: widget.BottomRight,
			InitialBounds:       masjid.HoustonBounds,
			Tiles: widget.TileLayer{
				URLTemplate: c.Map.TileURL,
				Attribution: c.Map.Attribution,
				Subdomains:  c.Map.Subdomains,
				MaxZoom:     c.Map.MaxZoom,
			},
		},
	}
}

// fitPadding maps an explicit zero to the controller's "no padding" value;
// the controller treats 0 as unset.
func fitPadding(p int) int {
	if p <= 0 {
		return -1
	}
	return p
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
