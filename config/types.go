package config

import "fmt"

// ModelConfig selects and configures the ModelClient adapter (spec.md
// §6 "model_provider" / "use_grounded_backend").
type ModelConfig struct {
	// Provider selects which ModelClient adapter to construct: "anthropic",
	// "openai", or "mock".
	Provider string `yaml:"provider,omitempty"`

	Model   string `yaml:"model,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`

	// UseGroundedBackend mirrors spec.md's use_grounded_backend: when
	// true, agents with grounded_search=true must succeed via the
	// grounded backend or the request fails with configuration_error.
	// No silent fallback.
	UseGroundedBackend bool `yaml:"use_grounded_backend,omitempty"`

	// ManagedIdentityAvailable records whether the deployment has a
	// managed identity wired to the grounded-search backend. Combined
	// with UseGroundedBackend, this drives the strict-mode
	// fail-at-construction contract the adapters implement.
	ManagedIdentityAvailable bool `yaml:"managed_identity_available,omitempty"`
}

func (c *ModelConfig) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "mock":
	case "":
		return fmt.Errorf("provider is required")
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.UseGroundedBackend && !c.ManagedIdentityAvailable && c.Provider != "mock" {
		return fmt.Errorf("use_grounded_backend requires managed_identity_available")
	}
	return nil
}

func (c *ModelConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
}

// RuntimeConfig carries the bounded-iteration and timeout knobs
// spec.md §6 names: max_tool_iterations_default, agent_turn_timeout_seconds,
// request_timeout_seconds, history_window_pairs, context_token_budget_fraction.
type RuntimeConfig struct {
	MaxToolIterationsDefault   int     `yaml:"max_tool_iterations_default,omitempty"`
	AgentTurnTimeoutSeconds    int     `yaml:"agent_turn_timeout_seconds,omitempty"`
	RequestTimeoutSeconds      int     `yaml:"request_timeout_seconds,omitempty"`
	HistoryWindowPairs         int     `yaml:"history_window_pairs,omitempty"`
	ContextTokenBudgetFraction float64 `yaml:"context_token_budget_fraction,omitempty"`
}

func (c *RuntimeConfig) Validate() error {
	if c.MaxToolIterationsDefault <= 0 {
		return fmt.Errorf("max_tool_iterations_default must be positive")
	}
	if c.AgentTurnTimeoutSeconds <= 0 {
		return fmt.Errorf("agent_turn_timeout_seconds must be positive")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	if c.RequestTimeoutSeconds < c.AgentTurnTimeoutSeconds {
		return fmt.Errorf("request_timeout_seconds must be >= agent_turn_timeout_seconds")
	}
	if c.HistoryWindowPairs <= 0 {
		return fmt.Errorf("history_window_pairs must be positive")
	}
	if c.ContextTokenBudgetFraction <= 0 || c.ContextTokenBudgetFraction > 1 {
		return fmt.Errorf("context_token_budget_fraction must be in (0,1]")
	}
	return nil
}

func (c *RuntimeConfig) SetDefaults() {
	if c.MaxToolIterationsDefault == 0 {
		c.MaxToolIterationsDefault = 6
	}
	if c.AgentTurnTimeoutSeconds == 0 {
		c.AgentTurnTimeoutSeconds = 30
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 90
	}
	if c.HistoryWindowPairs == 0 {
		c.HistoryWindowPairs = 6
	}
	if c.ContextTokenBudgetFraction == 0 {
		c.ContextTokenBudgetFraction = 0.75
	}
}

// StoreConfig selects the database/sql-backed Store implementation —
// mirrors store/sql.Config's Driver/DSN exactly so cmd/legalminectl can
// pass this straight through to sql.NewFromConfig.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver  string `yaml:"driver,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
	BlobDir string `yaml:"blob_dir,omitempty"`
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	case "":
		return fmt.Errorf("driver is required")
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
	return nil
}

func (c *StoreConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "file:legalmind.db?cache=shared&_fk=1"
	}
	if c.BlobDir == "" {
		c.BlobDir = "./data/blobs"
	}
}

// LoggingConfig holds the logging level and format settings. It is
// validated and defaulted here; no package reads it to configure its
// logger (thinkinglog's hclog logger uses a fixed Info level).
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "":
		return nil
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}
