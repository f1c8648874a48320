package config

import (
	"time"

	"github.com/openfroyo/refdata/pkg/telemetry"
)

// Config is the refdata application configuration.
type Config struct {
	// Seeds lists seed files or directories, merged in order.
	Seeds []string `yaml:"seeds" validate:"required,min=1,dive,required"`

	// Watch controls reloading when seeds change on disk.
	Watch WatchConfig `yaml:"watch"`

	// Policy controls lint policies evaluated before publishing.
	Policy PolicyConfig `yaml:"policy"`

	// Store configures the snapshot store.
	Store StoreConfig `yaml:"store"`

	// Telemetry configures logging, tracing and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WatchConfig configures seed watching.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// PolicyConfig configures snapshot policies.
type PolicyConfig struct {
	Enabled bool `yaml:"enabled"`

	// Paths lists additional .rego files or directories.
	Paths []string `yaml:"paths" validate:"dive,required"`

	// FailOn is the lowest severity that blocks a publish.
	FailOn string `yaml:"fail_on" validate:"omitempty,oneof=info warning error critical"`
}

// StoreConfig configures the snapshot store.
type StoreConfig struct {
	HistorySize int `yaml:"history_size" validate:"gte=0"`
}

// TelemetryConfig is the file form of telemetry.Config. Zero values keep
// the telemetry defaults.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`

	Logging struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
		Format string `yaml:"format" validate:"omitempty,oneof=console json"`
		Output string `yaml:"output"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled      *bool    `yaml:"enabled"`
		Exporter     string   `yaml:"exporter" validate:"omitempty,oneof=otlp stdout none"`
		Endpoint     string   `yaml:"endpoint"`
		SamplingRate *float64 `yaml:"sampling_rate" validate:"omitempty,gte=0,lte=1"`
		Insecure     *bool    `yaml:"insecure"`
	} `yaml:"tracing"`

	Metrics struct {
		Enabled       *bool  `yaml:"enabled"`
		ListenAddress string `yaml:"listen_address"`
		Path          string `yaml:"path"`
		Namespace     string `yaml:"namespace"`
	} `yaml:"metrics"`
}

// ToTelemetry overlays the file settings on telemetry.DefaultConfig, or on
// telemetry.ProductionConfig when the environment is "production".
func (tc TelemetryConfig) ToTelemetry(version string) *telemetry.Config {
	cfg := telemetry.DefaultConfig()
	if tc.Environment == "production" {
		cfg = telemetry.ProductionConfig()
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	if tc.ServiceName != "" {
		cfg.ServiceName = tc.ServiceName
	}
	if tc.Environment != "" {
		cfg.Environment = tc.Environment
	}

	if tc.Logging.Level != "" {
		cfg.Logging.Level = tc.Logging.Level
	}
	if tc.Logging.Format != "" {
		cfg.Logging.Format = tc.Logging.Format
	}
	if tc.Logging.Output != "" {
		cfg.Logging.Output = tc.Logging.Output
	}

	if tc.Tracing.Enabled != nil {
		cfg.Tracing.Enabled = *tc.Tracing.Enabled
	}
	if tc.Tracing.Exporter != "" {
		cfg.Tracing.Exporter = tc.Tracing.Exporter
	}
	if tc.Tracing.Endpoint != "" {
		cfg.Tracing.Endpoint = tc.Tracing.Endpoint
	}
	if tc.Tracing.SamplingRate != nil {
		cfg.Tracing.SamplingRate = *tc.Tracing.SamplingRate
	}
	if tc.Tracing.Insecure != nil {
		cfg.Tracing.Insecure = *tc.Tracing.Insecure
	}

	if tc.Metrics.Enabled != nil {
		cfg.Metrics.Enabled = *tc.Metrics.Enabled
	}
	if tc.Metrics.ListenAddress != "" {
		cfg.Metrics.ListenAddress = tc.Metrics.ListenAddress
	}
	if tc.Metrics.Path != "" {
		cfg.Metrics.Path = tc.Metrics.Path
	}
	if tc.Metrics.Namespace != "" {
		cfg.Metrics.Namespace = tc.Metrics.Namespace
	}

	return cfg
}

// ValidationError describes one problem found in a seed document.
type ValidationError struct {
	// File is the seed file the error was found in.
	File string `json:"file,omitempty"`

	// Path is the field path within the document, if known.
	Path string `json:"path,omitempty"`

	// Message describes the problem.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.File != "" && e.Path != "":
		return e.File + ": " + e.Path + ": " + e.Message
	case e.File != "":
		return e.File + ": " + e.Message
	}
	return e.Message
}
