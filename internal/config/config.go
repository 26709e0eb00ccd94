// ABOUTME: Configuration schema for the loopdeck player
// ABOUTME: Loaded from YAML with defaults for every tunable
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration, typically loaded from a YAML file
// with [Load].
type Config struct {
	// LibraryDir is the directory holding recordings and their loop
	// sidecars.
	LibraryDir string `yaml:"library_dir"`

	// CacheDir persists waveform envelopes. Empty keeps them in memory
	// only.
	CacheDir string `yaml:"cache_dir"`

	// HistoryPath is the play-history JSON file. Empty keeps history
	// in memory only.
	HistoryPath string `yaml:"history_path"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	Audio    AudioConfig    `yaml:"audio"`
	Waveform WaveformConfig `yaml:"waveform"`
}

// AudioConfig tunes the output device and playback behavior.
type AudioConfig struct {
	// SampleRate of the output device in Hz.
	SampleRate int `yaml:"sample_rate"`

	// Channels of the output device.
	Channels int `yaml:"channels"`

	// Volume is the initial output volume in [0,1].
	Volume float64 `yaml:"volume"`

	// FadeInMs ramps gain linearly from silence whenever a source
	// starts, including loop restarts. Zero disables the ramp.
	FadeInMs int `yaml:"fade_in_ms"`

	// TickIntervalMs is how often playback position is polled.
	TickIntervalMs int `yaml:"tick_interval_ms"`
}

// WaveformConfig tunes envelope computation.
type WaveformConfig struct {
	// TargetPoints is the envelope length used for display.
	TargetPoints int `yaml:"target_points"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LibraryDir: "recordings",
		LogLevel:   LogInfo,
		Audio: AudioConfig{
			SampleRate:     48000,
			Channels:       2,
			Volume:         1.0,
			TickIntervalMs: 10,
		},
		Waveform: WaveformConfig{
			TargetPoints: 200,
		},
	}
}
