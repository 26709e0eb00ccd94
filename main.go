// ABOUTME: Entry point for the loopdeck player
// ABOUTME: Parses CLI flags, loads config and starts the TUI or headless playback

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/loopdeck/loopdeck-go/internal/app"
	"github.com/loopdeck/loopdeck-go/internal/config"
	"github.com/loopdeck/loopdeck-go/internal/engine"
	"github.com/loopdeck/loopdeck-go/internal/ui"
	"github.com/loopdeck/loopdeck-go/internal/version"
)

var (
	configPath  = flag.String("config", "", "Config file path (default: loopdeck.yaml if present)")
	libraryDir  = flag.String("library", "", "Library directory override")
	logFile     = flag.String("log-file", "loopdeck.log", "Log file path")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	noTUI       = flag.Bool("no-tui", false, "Disable the TUI; requires -play")
	playID      = flag.String("play", "", "Play one recording headless and exit when it ends")
	loop        = flag.Bool("loop", false, "Loop the -play recording until interrupted")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

const defaultConfigPath = "loopdeck.yaml"

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopdeck: %v\n", err)
		os.Exit(1)
	}
	if *libraryDir != "" {
		cfg.LibraryDir = *libraryDir
	}
	if *debug {
		cfg.LogLevel = config.LogDebug
	}

	headless := *noTUI || *playID != ""

	logger, closeLog, err := newLogger(cfg.LogLevel, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopdeck: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	logger.Info().
		Str("version", version.Version).
		Str("library", cfg.LibraryDir).
		Msg("loopdeck starting")

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		fmt.Fprintf(os.Stderr, "loopdeck: %v\n", err)
		os.Exit(1)
	}

	if headless {
		err = runHeadless(a, logger)
	} else {
		err = ui.Run(a)
	}

	if cerr := a.Close(); cerr != nil {
		logger.Error().Err(cerr).Msg("shutdown error")
	}
	if err != nil {
		logger.Error().Err(err).Msg("player exited with error")
		fmt.Fprintf(os.Stderr, "loopdeck: %v\n", err)
		os.Exit(1)
	}
	logger.Info().Msg("player stopped")
}

func loadConfig() (config.Config, error) {
	if *configPath != "" {
		return config.Load(*configPath)
	}
	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// newLogger writes JSON logs to the log file. Headless runs also stream
// pretty logs to stderr; under the TUI the terminal belongs to Bubble Tea.
func newLogger(level config.LogLevel, headless bool) (zerolog.Logger, func(), error) {
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("open log file: %w", err)
	}

	lvl, err := zerolog.ParseLevel(string(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = f
	if headless {
		w = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}

// runHeadless plays one recording without the TUI and returns when it ends
// or a shutdown signal arrives.
func runHeadless(a *app.App, logger zerolog.Logger) error {
	if *playID == "" {
		return errors.New("headless mode needs -play <recording>")
	}

	if err := a.Toggle(*playID, *loop); err != nil {
		return fmt.Errorf("play %s: %w", *playID, err)
	}
	logger.Info().Str("recording_id", *playID).Bool("loop", *loop).Msg("headless playback started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			logger.Info().Msg("shutdown signal received")
			a.Stop()
			return nil

		case <-ticker.C:
			if a.Status().State == engine.StateIdle {
				return nil
			}
		}
	}
}
