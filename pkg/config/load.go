package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvSeeds overrides Config.Seeds with a comma-separated list of paths.
const EnvSeeds = "REFDATA_SEEDS"

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Seeds: nil,
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 500 * time.Millisecond,
		},
		Policy: PolicyConfig{
			Enabled: true,
			FailOn:  "error",
		},
		Store: StoreConfig{
			HistorySize: 16,
		},
	}
}

// LoadConfig reads the YAML configuration at path on top of DefaultConfig.
// An empty path yields the defaults. The REFDATA_SEEDS environment variable,
// when set, replaces the configured seeds. The result is not validated; call
// Validate once command-line overrides have been applied.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv(EnvSeeds); env != "" {
		cfg.Seeds = splitList(env)
	}

	return cfg, nil
}

// Validate checks the configuration against its validator tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
