package runtimeconfig

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrLoggingLevelInvalid reports an unsupported logging level.
	ErrLoggingLevelInvalid = errors.New("config: logging level invalid")
	// ErrLoggingFormatInvalid reports an unsupported logging format.
	ErrLoggingFormatInvalid = errors.New("config: logging format invalid")
	// ErrAutosaveIntervalInvalid reports a non-positive autosave debounce window.
	ErrAutosaveIntervalInvalid = errors.New("config: autosave interval must be positive")
	// ErrSchedulingRequiresWorker reports a scheduling window without a worker batch.
	ErrSchedulingRequiresWorker = errors.New("config: scheduling requires a positive worker batch size")
)

// Config is the root runtime configuration consumed by the editorial module.
type Config struct {
	Features  Features
	Autosave  AutosaveConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Content   ContentConfig
}

// Features toggles optional subsystems.
type Features struct {
	// Autosave enables the draft auto-persistence debouncer.
	Autosave bool
	// Scheduling enables timed publication jobs for scheduled news.
	Scheduling bool
	// MetadataSchemas enables JSON-schema validation of item metadata.
	MetadataSchemas bool
}

// AutosaveConfig controls the draft auto-persistence debounce window.
type AutosaveConfig struct {
	Interval time.Duration
}

// SchedulerConfig tunes the publication job worker.
type SchedulerConfig struct {
	WorkerBatchSize int
	MaxAttempts     int
}

// LoggingConfig selects the go-logger adapter behaviour.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// ContentConfig carries per-kind editorial profiles.
type ContentConfig struct {
	News     KindConfig
	Research KindConfig
}

// KindConfig describes kind-specific policy knobs.
type KindConfig struct {
	// MetadataSchema, when set, is a JSON schema applied to item metadata
	// during validation.
	MetadataSchema map[string]any
}

// DefaultConfig returns the configuration used when hosts supply nothing.
func DefaultConfig() Config {
	return Config{
		Features: Features{
			Autosave:   true,
			Scheduling: true,
		},
		Autosave: AutosaveConfig{
			Interval: 2 * time.Second,
		},
		Scheduler: SchedulerConfig{
			WorkerBatchSize: 50,
			MaxAttempts:     3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks cross-field consistency before the module boots.
func (c Config) Validate() error {
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if c.Features.Autosave && c.Autosave.Interval <= 0 {
		return ErrAutosaveIntervalInvalid
	}
	if c.Features.Scheduling && c.Scheduler.WorkerBatchSize <= 0 {
		return ErrSchedulingRequiresWorker
	}
	return nil
}

func (l LoggingConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}
	return nil
}
