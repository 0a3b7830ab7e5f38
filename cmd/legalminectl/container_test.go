package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/config"
	"github.com/lexframe/lexframe/model/anthropic"
	"github.com/lexframe/lexframe/model/mock"
	"github.com/lexframe/lexframe/model/openai"
)

func TestBuildModelClient_MockProviderNeedsNoCredentials(t *testing.T) {
	c, err := buildModelClient(config.ModelConfig{Provider: "mock"})
	require.NoError(t, err)
	_, ok := c.(*mock.Client)
	assert.True(t, ok)
}

func TestBuildModelClient_OpenAIProviderBuildsOpenAIClient(t *testing.T) {
	c, err := buildModelClient(config.ModelConfig{Provider: "openai", APIKey: "key", Model: "gpt-4o"})
	require.NoError(t, err)
	_, ok := c.(*openai.Client)
	assert.True(t, ok)
}

func TestBuildModelClient_UnrecognizedProviderDefaultsToAnthropic(t *testing.T) {
	c, err := buildModelClient(config.ModelConfig{Provider: "something-else", APIKey: "key"})
	require.NoError(t, err)
	_, ok := c.(*anthropic.Client)
	assert.True(t, ok)
}
