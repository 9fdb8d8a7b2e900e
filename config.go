package flowtrace

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// DefaultPath is the event log written when no path is configured.
const DefaultPath = "flowtrace.jsonl"

// DefaultMaxArgLength bounds value snapshots when no bound is configured.
const DefaultMaxArgLength = 1000

// Config holds agent configuration.
type Config struct {
	// Path is the JSONL event log file, opened in append mode.
	Path string `envconfig:"PATH" default:"flowtrace.jsonl"`

	// Console mirrors every event line to stderr.
	Console bool `envconfig:"CONSOLE" default:"false"`

	// MaxArgLength bounds each argument/result snapshot. Snapshots
	// longer than the bound are cut and suffixed with "...". Zero
	// disables the bound.
	MaxArgLength int `envconfig:"MAX_ARG_LENGTH" default:"1000"`

	// ModulePrefix is reserved for module filtering. It is accepted
	// and stored but not applied to emitted events yet.
	ModulePrefix string `envconfig:"MODULE_PREFIX"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Path:         DefaultPath,
		Console:      false,
		MaxArgLength: DefaultMaxArgLength,
		ModulePrefix: "",
	}
}

// LoadEnv builds a Config from FLOWTRACE_* environment variables,
// falling back to defaults for unset variables.
func LoadEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("flowtrace", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("event log path must not be empty")
	}
	if c.MaxArgLength < 0 {
		return fmt.Errorf("max arg length must not be negative, got %d", c.MaxArgLength)
	}
	return nil
}
