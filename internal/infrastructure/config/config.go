// Package config provides configuration structs and utilities for the
// syncdeck client.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config represents the root configuration for the syncdeck client.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Storage   StorageConfig   `yaml:"storage"`
	Logs      LogsConfig      `yaml:"logs"`
}

// BackendMode selects which bridge implementation the client talks to.
type BackendMode string

const (
	ModeRemote    BackendMode = "remote"
	ModeSimulator BackendMode = "simulator"
)

// BackendConfig holds configuration for the sync backend connection.
type BackendConfig struct {
	Mode     BackendMode   `yaml:"mode"`     // remote or simulator
	Endpoint string        `yaml:"endpoint"` // Backend exec endpoint URL
	Timeout  time.Duration `yaml:"timeout"`
}

// SimulatorConfig holds configuration for the offline simulator bridge.
type SimulatorConfig struct {
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
	Seed     int64         `yaml:"seed"` // 0 means time-seeded
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"` // 0.0 to 1.0
	ServiceName  string  `yaml:"service_name"`
}

// StorageConfig holds configuration for local client-side storage.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite database file for operator preferences
}

// LogsConfig holds default filter values for the log view.
type LogsConfig struct {
	DefaultWindowDays int    `yaml:"default_window_days"` // -1 for no window
	DefaultStatus     string `yaml:"default_status"`      // all, success, error, interrupted
}

// Default configuration values.
const (
	DefaultBackendMode       = ModeSimulator
	DefaultBackendTimeout    = 30 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultStoragePath       = "~/.syncdeck/syncdeck.db"
	DefaultLogsWindowDays    = 30
	DefaultLogsStatus        = "all"
	DefaultSimulatorMinDelay = 300 * time.Millisecond
	DefaultSimulatorMaxDelay = 800 * time.Millisecond

	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "syncdeck"
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// Valid log-view status filters.
var validLogStatuses = map[string]bool{
	"all":         true,
	"success":     true,
	"error":       true,
	"interrupted": true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Mode:    DefaultBackendMode,
			Timeout: DefaultBackendTimeout,
		},
		Simulator: SimulatorConfig{
			MinDelay: DefaultSimulatorMinDelay,
			MaxDelay: DefaultSimulatorMaxDelay,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: TracingConfig{
			Enabled:      DefaultTracingEnabled,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
		Storage: StorageConfig{
			Path: DefaultStoragePath,
		},
		Logs: LogsConfig{
			DefaultWindowDays: DefaultLogsWindowDays,
			DefaultStatus:     DefaultLogsStatus,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Backend.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("backend: %w", err))
	}

	if err := c.Simulator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulator: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	if err := c.Logs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logs: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the BackendConfig is valid.
func (b *BackendConfig) Validate() error {
	var errs []error

	switch b.Mode {
	case ModeRemote, ModeSimulator, "":
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q: must be remote or simulator", b.Mode))
	}

	if b.Mode == ModeRemote {
		if b.Endpoint == "" {
			errs = append(errs, errors.New("endpoint is required when mode is 'remote'"))
		} else {
			parsedURL, err := url.Parse(b.Endpoint)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid endpoint: %w", err))
			} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
				errs = append(errs, errors.New("endpoint must use http or https scheme"))
			}
		}
	}

	if b.Timeout < 0 {
		errs = append(errs, errors.New("timeout must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the SimulatorConfig is valid.
func (s *SimulatorConfig) Validate() error {
	var errs []error

	if s.MinDelay < 0 {
		errs = append(errs, errors.New("min_delay must be non-negative"))
	}
	if s.MaxDelay < 0 {
		errs = append(errs, errors.New("max_delay must be non-negative"))
	}
	if s.MaxDelay > 0 && s.MinDelay > s.MaxDelay {
		errs = append(errs, errors.New("min_delay must not exceed max_delay"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
			errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the StorageConfig is valid.
func (s *StorageConfig) Validate() error {
	if s.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// Validate checks if the LogsConfig is valid.
func (l *LogsConfig) Validate() error {
	var errs []error

	if l.DefaultWindowDays < -1 || l.DefaultWindowDays == 0 {
		errs = append(errs, errors.New("default_window_days must be positive, or -1 for no window"))
	}

	if l.DefaultStatus != "" && !validLogStatuses[l.DefaultStatus] {
		errs = append(errs, fmt.Errorf("invalid default_status %q: must be one of all, success, error, interrupted", l.DefaultStatus))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
