package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads filePath (if non-empty and it exists), applies environment
// variable expansion, decodes into Config, applies defaults, and
// validates — the same read -> expand -> decode -> default -> validate
// pipeline as the teacher's pkg/config/loader.go Loader.Load, minus the
// provider abstraction (this platform has exactly one config source:
// an optional local YAML file plus the process environment).
func Load(filePath string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("config: load env files: %w", err)
	}

	cfg := &Config{}

	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return nil, fmt.Errorf("config: read %s: %w", filePath, err)
			}
			if err := decodeYAML(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", filePath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", filePath, err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromString parses yamlContent directly, applying the same
// expand/decode/default/validate pipeline as Load. Used by tests and
// by callers embedding config inline rather than via a file path.
func LoadFromString(yamlContent string) (*Config, error) {
	cfg := &Config{}
	if err := decodeYAML([]byte(yamlContent), cfg); err != nil {
		return nil, fmt.Errorf("config: parse inline config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// decodeYAML unmarshals raw YAML into a map, expands ${VAR}/$VAR
// references against the process environment, then decodes the
// expanded map into cfg via mapstructure (yaml tags, weak typing so
// env-expanded strings coerce into ints/bools/floats).
func decodeYAML(data []byte, cfg *Config) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	expanded := ExpandEnvVarsInData(raw)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(expanded); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
