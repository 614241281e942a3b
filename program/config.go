package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	ConfigPath string `mapstructure:"-"`

	// input
	InputPath        string  `mapstructure:"input"`
	Channel          string  `mapstructure:"channel"`
	HighPass         float64 `mapstructure:"highpass"`
	SyntheticSeconds float64 `mapstructure:"synthetic-seconds"`
	SyntheticRate    float64 `mapstructure:"synthetic-rate"`
	Seed             int64   `mapstructure:"seed"`

	// extraction
	Extractor            string  `mapstructure:"extractor"`
	Projector            string  `mapstructure:"projector"`
	Align                string  `mapstructure:"align"`
	PreMs                float64 `mapstructure:"pre-ms"`
	PostMs               float64 `mapstructure:"post-ms"`
	RefractoryMs         float64 `mapstructure:"refractory-ms"`
	Bins                 int     `mapstructure:"bins"`
	TopIntervals         int     `mapstructure:"top-intervals"`
	IntervalResolutionMs float64 `mapstructure:"interval-resolution-ms"`

	// render
	PlotFPS   int  `mapstructure:"plot-fps"`
	LogScale  bool `mapstructure:"log-scale"`
	ViewSplit int  `mapstructure:"view-split"`
	AltScreen bool `mapstructure:"alt-screen"`

	StatsEnabled bool `mapstructure:"stats"`
	StatsWindow  int  `mapstructure:"stats-window"`

	LogFile  string `mapstructure:"log-file"`
	LogLevel string `mapstructure:"log-level"`
}

var config = Config{
	InputPath:        "",
	Channel:          "",
	HighPass:         300,
	SyntheticSeconds: 10,
	SyntheticRate:    25000,
	Seed:             1,

	Extractor:            "threshold",
	Projector:            "pca",
	Align:                "offset",
	PreMs:                0.5,
	PostMs:               1.5,
	RefractoryMs:         1,
	Bins:                 250,
	TopIntervals:         10,
	IntervalResolutionMs: 1,

	PlotFPS:   20,
	LogScale:  false,
	ViewSplit: 30,
	AltScreen: true,

	StatsEnabled: true,
	StatsWindow:  64,

	LogFile:  "",
	LogLevel: "info",
}

func bindFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "Read settings from this YAML file (flags set on the command line take precedence)")
	fs.StringVar(&c.InputPath, "in", c.InputPath, "Load the trace from this .json, .wav or .parquet export (- reads JSON from stdin)")
	fs.StringVar(&c.Channel, "channel", c.Channel, "Channel to load (default: first channel by name)")
	fs.Float64Var(&c.HighPass, "highpass", c.HighPass, "High-pass cutoff in Hz applied after loading (0 disables)")
	fs.Float64Var(&c.SyntheticSeconds, "synthetic-seconds", c.SyntheticSeconds, "Length of the generated trace when no input is given")
	fs.Float64Var(&c.SyntheticRate, "synthetic-rate", c.SyntheticRate, "Sample rate of the generated trace in Hz")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed for generated traces and the synthetic extractor")

	fs.StringVar(&c.Extractor, "extractor", c.Extractor, "Event extractor: threshold or synthetic")
	fs.StringVar(&c.Projector, "projector", c.Projector, "Feature projector: pca or circle")
	fs.StringVar(&c.Align, "align", c.Align, "Waveform window alignment: offset, symmetric or causal")
	fs.Float64Var(&c.PreMs, "pre-ms", c.PreMs, "Waveform window before the event (ms)")
	fs.Float64Var(&c.PostMs, "post-ms", c.PostMs, "Waveform window after the event (ms)")
	fs.Float64Var(&c.RefractoryMs, "refractory-ms", c.RefractoryMs, "Minimum time between two detected events (ms)")
	fs.IntVar(&c.Bins, "bins", c.Bins, "Number of inter-spike interval histogram bins")
	fs.IntVar(&c.TopIntervals, "top-intervals", c.TopIntervals, "Length of the dominant interval list")
	fs.Float64Var(&c.IntervalResolutionMs, "interval-resolution-ms", c.IntervalResolutionMs, "Interval class width for the dominant interval list (ms)")

	fs.IntVar(&c.PlotFPS, "plot-fps", c.PlotFPS, "Plot refresh rate (frames per second)")
	fs.BoolVar(&c.LogScale, "log-scale", c.LogScale, "Start with a logarithmic interval histogram")
	fs.IntVar(&c.ViewSplit, "view-split", c.ViewSplit, "Width of the interval list in % of the screen once locked [20,80]")
	fs.BoolVar(&c.AltScreen, "alt-screen", c.AltScreen, "Use the terminal alternate screen buffer (recommended inside IDE terminals)")
	fs.BoolVar(&c.StatsEnabled, "stats", c.StatsEnabled, "Show session stats")
	fs.IntVar(&c.StatsWindow, "stats-window", c.StatsWindow, "Number of recent recompute durations kept")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Append JSON logs to this file (empty disables logging)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error")
}

// applyConfigFile loads path into c, then re-applies the flags that were set
// explicitly on fs.
func applyConfigFile(fs *flag.FlagSet, c *Config, path string) error {
	explicit := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	if err := v.Unmarshal(c, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.ErrorUnused = true
	}); err != nil {
		return fmt.Errorf("parsing config file failed (%s): %w", path, err)
	}

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("-%s: %w", name, err)
		}
	}
	return nil
}

func validateAndNormalizeConfig(c *Config) error {
	if c.HighPass < 0 {
		return fmt.Errorf("-highpass must be >= 0")
	}
	if c.InputPath == "" {
		if c.SyntheticSeconds <= 0 {
			return fmt.Errorf("-synthetic-seconds must be > 0")
		}
		if c.SyntheticRate <= 0 {
			return fmt.Errorf("-synthetic-rate must be > 0")
		}
	}
	c.Extractor = strings.ToLower(strings.TrimSpace(c.Extractor))
	switch c.Extractor {
	case "threshold", "synthetic":
	default:
		return fmt.Errorf("-extractor must be threshold or synthetic")
	}
	c.Projector = strings.ToLower(strings.TrimSpace(c.Projector))
	switch c.Projector {
	case "pca", "circle":
	default:
		return fmt.Errorf("-projector must be pca or circle")
	}
	if _, err := parseAlignment(c.Align); err != nil {
		return fmt.Errorf("-align: %w", err)
	}
	if c.PreMs < 0 || c.PostMs < 0 {
		return fmt.Errorf("-pre-ms and -post-ms must be >= 0")
	}
	if c.PreMs+c.PostMs <= 0 {
		return fmt.Errorf("-pre-ms + -post-ms must be > 0")
	}
	if c.RefractoryMs < 0 {
		return fmt.Errorf("-refractory-ms must be >= 0")
	}
	if c.Bins < 1 {
		return fmt.Errorf("-bins must be >= 1")
	}
	if c.TopIntervals < 1 {
		return fmt.Errorf("-top-intervals must be >= 1")
	}
	if c.IntervalResolutionMs <= 0 {
		return fmt.Errorf("-interval-resolution-ms must be > 0")
	}
	if c.PlotFPS < 1 {
		return fmt.Errorf("-plot-fps must be >= 1")
	}
	c.ViewSplit = max(20, c.ViewSplit)
	c.ViewSplit = min(80, c.ViewSplit)
	if c.StatsWindow < 16 {
		c.StatsWindow = 16
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

func newExtractor(c *Config) (EventExtractor, error) {
	switch c.Extractor {
	case "synthetic":
		return NewSyntheticExtractor(c.Seed), nil
	case "threshold":
		align, err := parseAlignment(c.Align)
		if err != nil {
			return nil, err
		}
		x := NewThresholdExtractor()
		x.Pre = c.PreMs / 1000
		x.Post = c.PostMs / 1000
		x.Refractory = c.RefractoryMs / 1000
		x.Align = align
		return x, nil
	}
	return nil, fmt.Errorf("unknown extractor %q", c.Extractor)
}

func newProjector(c *Config) (Projector, error) {
	switch c.Projector {
	case "pca":
		return PCAProjector{}, nil
	case "circle":
		return CircleProjector{}, nil
	}
	return nil, fmt.Errorf("unknown projector %q", c.Projector)
}

func newDerivedCache(c *Config) (*DerivedCache, error) {
	x, err := newExtractor(c)
	if err != nil {
		return nil, err
	}
	p, err := newProjector(c)
	if err != nil {
		return nil, err
	}
	cache := NewDerivedCache(x, p, c.Bins)
	cache.Ranker = NewIntervalRanker(c.TopIntervals, c.IntervalResolutionMs)
	return cache, nil
}
