// ABOUTME: YAML loader and validation for the loopdeck configuration
// ABOUTME: File values override defaults; unknown keys are rejected
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, layered over
// [Default], and returns a validated [Config].
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over [Default] and validates the
// result. Useful in tests where configs come from string literals.
func LoadFromReader(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that cfg holds a coherent set of values. It returns
// a joined error listing every failure found.
func Validate(cfg Config) error {
	var errs []error

	if cfg.LibraryDir == "" {
		errs = append(errs, errors.New("library_dir is required"))
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate))
	}
	if cfg.Audio.Channels < 1 {
		errs = append(errs, fmt.Errorf("audio.channels must be at least 1, got %d", cfg.Audio.Channels))
	}
	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be within [0,1], got %g", cfg.Audio.Volume))
	}
	if cfg.Audio.FadeInMs < 0 {
		errs = append(errs, fmt.Errorf("audio.fade_in_ms must not be negative, got %d", cfg.Audio.FadeInMs))
	}
	if cfg.Audio.TickIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("audio.tick_interval_ms must not be negative, got %d", cfg.Audio.TickIntervalMs))
	}
	if cfg.Waveform.TargetPoints <= 0 {
		errs = append(errs, fmt.Errorf("waveform.target_points must be positive, got %d", cfg.Waveform.TargetPoints))
	}

	return errors.Join(errs...)
}
