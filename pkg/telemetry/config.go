package telemetry

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds logging, tracing, metrics and event settings.
type Config struct {
	ServiceName    string `validate:"required"`
	ServiceVersion string `validate:"required"`

	// Environment is reported on spans (development, production, ...).
	Environment string

	Logging LoggingConfig
	Tracing TracingConfig
	Metrics MetricsConfig
	Events  EventsConfig

	// ResourceAttributes are added to the trace resource.
	ResourceAttributes map[string]string
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `validate:"oneof=trace debug info warn error fatal"`
	Format string `validate:"oneof=console json"`

	// Output is stdout, stderr, discard or a file path.
	Output string

	// Caller adds file:line to every entry.
	Caller bool
}

// TracingConfig configures OpenTelemetry tracing. When Enabled is false
// spans are still created but never sampled.
type TracingConfig struct {
	Enabled bool

	// Exporter is otlp, stdout or none.
	Exporter string

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string

	SamplingRate  float64 `validate:"gte=0,lte=1"`
	ExportTimeout time.Duration
	Insecure      bool
}

// MetricsConfig configures the Prometheus registry and its HTTP endpoint.
type MetricsConfig struct {
	Enabled       bool
	ListenAddress string `validate:"required_if=Enabled true"`
	Path          string
	Namespace     string

	// Buckets are the reload duration histogram buckets in seconds.
	Buckets []float64
}

// EventsConfig configures the event publisher.
type EventsConfig struct {
	Enabled bool

	// EnableAsync delivers events from a buffered background goroutine.
	EnableAsync bool
	BufferSize  int `validate:"gte=0"`
}

// DefaultConfig returns the telemetry used by the CLI. Logs go to stderr
// so command output on stdout stays clean.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "refdata",
		ServiceVersion: "dev",
		Environment:    "development",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Tracing: TracingConfig{
			Enabled:       false,
			Exporter:      "stdout",
			Endpoint:      "localhost:4317",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			Insecure:      true,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			ListenAddress: ":9090",
			Path:          "/metrics",
			Namespace:     "refdata",
			Buckets:       []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		Events: EventsConfig{
			Enabled:     true,
			EnableAsync: true,
			BufferSize:  256,
		},
		ResourceAttributes: make(map[string]string),
	}
}

// ProductionConfig logs JSON and exports a sample of traces over OTLP.
func ProductionConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "production"
	cfg.Logging.Format = "json"
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "otlp"
	cfg.Tracing.SamplingRate = 0.1
	cfg.Tracing.Insecure = false
	return cfg
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "otlp", "stdout", "none":
		default:
			return fmt.Errorf("invalid trace exporter: %s", c.Tracing.Exporter)
		}
	}

	if c.Events.Enabled && c.Events.EnableAsync && c.Events.BufferSize == 0 {
		return fmt.Errorf("event buffer size must be positive for async delivery")
	}

	return nil
}
