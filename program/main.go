package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"go.uber.org/zap"
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	errorColor    = styles.AdaptiveColor{Light: "1", Dark: "9"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	errorFg       = styles.NewStyle().Foreground(errorColor)
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

func main() {
	log.SetOutput(os.Stderr)
	bindFlags(flag.CommandLine, &config)
	flag.Parse()

	if config.ConfigPath != "" {
		if err := applyConfigFile(flag.CommandLine, &config, config.ConfigPath); err != nil {
			log.Fatal(err)
		}
	}
	if err := validateAndNormalizeConfig(&config); err != nil {
		log.Fatal(err)
	}
	if err := run(&config); err != nil {
		log.Fatal(err)
	}
}

func run(c *Config) error {
	logger, closeLog, err := newLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	trace, source, err := loadInput(c)
	if err != nil {
		logger.Error("trace load failed", zap.String("source", source), zap.Error(err))
		return err
	}
	filtered, err := filterTrace(trace, c.HighPass)
	if err != nil {
		return fmt.Errorf("-highpass: %w", err)
	}

	cache, err := newDerivedCache(c)
	if err != nil {
		return err
	}
	metrics := newSessionMetrics(c.StatsWindow)
	metrics.setEnabled(c.StatsEnabled)
	session := NewSession(filtered, cache, logger, metrics)

	start, end := filtered.Span()
	logger.Info("trace loaded",
		zap.String("session", session.ID),
		zap.String("source", source),
		zap.String("title", filtered.Title),
		zap.Int("samples", filtered.Len()),
		zap.Float64("sample_rate", filtered.SampleRate),
		zap.Float64("start", start),
		zap.Float64("end", end),
		zap.Float64("highpass", c.HighPass),
		zap.String("extractor", c.Extractor),
	)

	m := newModel(session)
	opts := []tui.ProgramOption{tui.WithInputTTY(), tui.WithMouseCellMotion()}
	if c.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil {
		return err
	}
	logger.Info("session ended", zap.String("session", session.ID), zap.Stringer("mode", session.Mode()))
	return nil
}

// loadInput reads the trace from -in, from piped stdin, or generates one.
func loadInput(c *Config) (*Trace, string, error) {
	switch {
	case c.InputPath == "-":
		tr, err := LoadTraceReader(os.Stdin, "stdin", c.Channel)
		return tr, "stdin", err
	case c.InputPath != "":
		tr, err := LoadTrace(c.InputPath, c.Channel)
		return tr, c.InputPath, err
	case !term.IsTerminal(os.Stdin.Fd()):
		tr, err := LoadTraceReader(os.Stdin, "stdin", c.Channel)
		return tr, "stdin", err
	}
	return syntheticTrace(c.SyntheticSeconds, c.SyntheticRate, c.Seed), "synthetic", nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max[T ~int | ~float64 | ~uint32](a, b T) T {
	if a > b {
		return a
	}
	return b
}
