package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromString_AppliesDefaultsWhenSectionsAreEmpty(t *testing.T) {
	cfg, err := LoadFromString(`name: test-deployment`)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, 6, cfg.Runtime.MaxToolIterationsDefault)
	assert.Equal(t, 30, cfg.Runtime.AgentTurnTimeoutSeconds)
	assert.Equal(t, 90, cfg.Runtime.RequestTimeoutSeconds)
	assert.Equal(t, 6, cfg.Runtime.HistoryWindowPairs)
	assert.Equal(t, 0.75, cfg.Runtime.ContextTokenBudgetFraction)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "file:legalmind.db?cache=shared&_fk=1", cfg.Store.DSN)
	assert.Equal(t, "./data/blobs", cfg.Store.BlobDir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromString_OverridesDefaultsFromYAML(t *testing.T) {
	cfg, err := LoadFromString(`
model:
  provider: openai
  model: gpt-4o
runtime:
  max_tool_iterations_default: 3
store:
  driver: postgres
  dsn: "postgres://localhost/legalmind"
`)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model.Model)
	assert.Equal(t, 3, cfg.Runtime.MaxToolIterationsDefault)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/legalmind", cfg.Store.DSN)
}

func TestLoadFromString_RejectsUnknownModelProvider(t *testing.T) {
	_, err := LoadFromString(`model: {provider: not-a-real-provider}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestLoadFromString_RejectsGroundedBackendWithoutManagedIdentity(t *testing.T) {
	_, err := LoadFromString(`
model:
  provider: anthropic
  use_grounded_backend: true
  managed_identity_available: false
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "managed_identity_available")
}

func TestLoadFromString_MockProviderIsExemptFromManagedIdentityRule(t *testing.T) {
	cfg, err := LoadFromString(`
model:
  provider: mock
  use_grounded_backend: true
  managed_identity_available: false
`)
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Model.Provider)
}

func TestLoadFromString_RejectsRequestTimeoutShorterThanAgentTimeout(t *testing.T) {
	_, err := LoadFromString(`
runtime:
  agent_turn_timeout_seconds: 60
  request_timeout_seconds: 30
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout_seconds")
}

func TestLoadFromString_RejectsBudgetFractionOutOfRange(t *testing.T) {
	_, err := LoadFromString(`runtime: {context_token_budget_fraction: 1.5}`)
	require.Error(t, err)
}

func TestLoadFromString_ExpandsEnvironmentVariables(t *testing.T) {
	require.NoError(t, os.Setenv("LEXFRAME_TEST_API_KEY", "secret-value"))
	defer os.Unsetenv("LEXFRAME_TEST_API_KEY")

	cfg, err := LoadFromString(`
model:
  provider: openai
  api_key: "${LEXFRAME_TEST_API_KEY}"
`)
	require.NoError(t, err)
	assert.Equal(t, "secret-value", cfg.Model.APIKey)
}

func TestLoad_NonexistentFilePathFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/tmp/this-config-file-does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
}

func TestLoad_EmptyFilePathUsesOnlyDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}
