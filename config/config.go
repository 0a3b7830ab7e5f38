// Package config provides the configuration loader for the platform: an
// optional YAML file, with ${VAR}/$VAR references expanded from the
// environment, filled in by built-in defaults. Environment variables do
// not override keys on their own. Grounded on the teacher repo's
// pkg/config/loader.go (YAML/JSON parse -> env expansion -> mapstructure
// decode -> SetDefaults -> Validate pipeline) and its top-level
// config.go (unified Config struct with cascading Validate/SetDefaults
// across sub-configs).
package config

import "fmt"

// Config is the complete runtime configuration for a legalminectl
// deployment: which ModelClient to bind, how strictly grounded search
// is enforced, and the timeout/budget knobs the runtime's components
// read at construction time.
type Config struct {
	Version     string            `yaml:"version,omitempty"`
	Name        string            `yaml:"name,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`

	Model   ModelConfig   `yaml:"model,omitempty"`
	Runtime RuntimeConfig `yaml:"runtime,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// Validate checks every sub-config in turn, matching the teacher's
// cascading-Validate pattern: each sub-config owns its own rules, the
// parent only wraps the error with which section failed.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model config validation failed: %w", err)
	}
	if err := c.Runtime.Validate(); err != nil {
		return fmt.Errorf("runtime config validation failed: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config validation failed: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}
	return nil
}

// SetDefaults fills every unset field across all sub-configs.
func (c *Config) SetDefaults() {
	c.Model.SetDefaults()
	c.Runtime.SetDefaults()
	c.Store.SetDefaults()
	c.Logging.SetDefaults()
}
